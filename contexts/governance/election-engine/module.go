package electionengine

import (
	"log/slog"

	"electoral/contexts/governance/election-engine/adapters/cache"
	httpadapter "electoral/contexts/governance/election-engine/adapters/http"
	"electoral/contexts/governance/election-engine/adapters/memory"
	"electoral/contexts/governance/election-engine/application/commands"
	"electoral/contexts/governance/election-engine/application/queries"
	"electoral/contexts/governance/election-engine/application/workers"
	"electoral/contexts/governance/election-engine/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Relay    workers.OutboxRelay
	Archiver workers.ResultsArchiver
	Store    *memory.Store
}

type Dependencies struct {
	Records         ports.RecordStore
	Reader          ports.RecordReader
	Outbox          ports.OutboxRepository
	Results         ports.ResultArchive
	Cache           ports.ElectionCache
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	Publisher       ports.EventPublisher
	Subscriber      ports.EventSubscriber
	OutboxBatchSize int
	DisableArchiver bool
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreateElection: commands.CreateElectionUseCase{
				Store:  deps.Records,
				Cache:  deps.Cache,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Apply: commands.ApplyUseCase{
				Store:  deps.Records,
				Cache:  deps.Cache,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Register: commands.RegisterUseCase{
				Store:  deps.Records,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			AdvanceStage: commands.AdvanceStageUseCase{
				Store:  deps.Records,
				Cache:  deps.Cache,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Vote: commands.VoteUseCase{
				Store:  deps.Records,
				Cache:  deps.Cache,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Queries: queries.ElectionQueryUseCase{
				Records: deps.Reader,
				Cache:   deps.Cache,
				Results: deps.Results,
				Logger:  deps.Logger,
			},
			Logger: deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		Archiver: workers.ResultsArchiver{
			Subscriber: deps.Subscriber,
			Results:    deps.Results,
			Disabled:   deps.DisableArchiver,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one in-memory store. Publisher and
// Subscriber stay nil until the caller attaches an event bus.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	electionCache, _ := cache.NewElectionCache(0)
	module := NewModule(Dependencies{
		Records: store,
		Reader:  store,
		Outbox:  store,
		Results: store,
		Cache:   electionCache,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}

// WithEventBus returns m with the relay and archiver attached to bus.
func (m Module) WithEventBus(publisher ports.EventPublisher, subscriber ports.EventSubscriber) Module {
	m.Relay.Publisher = publisher
	m.Archiver.Subscriber = subscriber
	return m
}
