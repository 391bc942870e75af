// Package mocks provides generated gomock doubles for the portal's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().ListEvents(gomock.Any(), "token", gomock.Any()).Return(nil, nil)
package mocks

// MockBackend: Login, Logout, AdminStatistics, ListEvents, ListAnnouncements, ListVolunteers, VolunteerStatistics
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/fstgc/vms-portal/internal/ports Backend

// MockGenerationStore: Next, Current, Forget
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=generation_store_mock.go github.com/fstgc/vms-portal/internal/ports GenerationStore
