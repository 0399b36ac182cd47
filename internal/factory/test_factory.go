package factory

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/elostealo/internal/config"
	"github.com/mcoot/elostealo/internal/dependencies/mocks"
	"github.com/mcoot/elostealo/internal/events"
	"github.com/mcoot/elostealo/internal/services/catalog"
	"github.com/mcoot/elostealo/internal/storage/memory"
	"github.com/mcoot/elostealo/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Fakes for test control
	FakeClock  *clockwork.FakeClock
	MockRandom *mocks.MockRandom
	Events     *events.MemoryPublisher
	Memory     *memory.Storage
}

// NewTestApp creates an App with in-memory storage, a fake clock and the built-in catalog
func NewTestApp() *TestApp {
	cfg := config.Default()
	cfg.TicketCost = bcrypt.MinCost

	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	publisher := events.NewMemoryPublisher()
	store := memory.New()

	cat, err := catalog.Load(context.Background(), catalog.NewFileSource(""))
	if err != nil {
		panic(err)
	}

	app, err := newWithDependencies(cfg, store, fakeClock, mockRandom, publisher, cat, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		FakeClock:  fakeClock,
		MockRandom: mockRandom,
		Events:     publisher,
		Memory:     store,
	}
}
