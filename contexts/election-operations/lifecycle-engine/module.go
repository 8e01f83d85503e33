package lifecycleengine

import (
	"log/slog"

	httpadapter "quorum/contexts/election-operations/lifecycle-engine/adapters/http"
	"quorum/contexts/election-operations/lifecycle-engine/adapters/memory"
	"quorum/contexts/election-operations/lifecycle-engine/application/commands"
	"quorum/contexts/election-operations/lifecycle-engine/application/queries"
	"quorum/contexts/election-operations/lifecycle-engine/application/workers"
	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Sweeper workers.DueElectionSweeper
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Elections       ports.ElectionRepository
	Races           ports.RaceRepository
	Ballots         ports.BallotRepository
	Votes           ports.VoteCounter
	Members         ports.MembershipReader
	Outbox          ports.OutboxWriter
	OutboxRepo      ports.OutboxRepository
	Publisher       ports.EventPublisher
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	OutboxBatchSize int
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	electionUseCase := commands.ElectionUseCase{
		Elections: deps.Elections,
		Votes:     deps.Votes,
		Members:   deps.Members,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	raceUseCase := commands.RaceUseCase{
		Elections: deps.Elections,
		Races:     deps.Races,
		Members:   deps.Members,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	candidateUseCase := commands.CandidateUseCase{
		Elections: deps.Elections,
		Races:     deps.Races,
		Ballots:   deps.Ballots,
		Members:   deps.Members,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	electionQueries := queries.ElectionQueries{
		Elections: deps.Elections,
		Races:     deps.Races,
		Ballots:   deps.Ballots,
		Members:   deps.Members,
	}
	sweeper := workers.DueElectionSweeper{
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	relay := workers.OutboxRelay{
		Outbox:    deps.OutboxRepo,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		BatchSize: deps.OutboxBatchSize,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections:  electionUseCase,
			Races:      raceUseCase,
			Candidates: candidateUseCase,
			Queries:    electionQueries,
			Sweeper:    sweeper,
			Logger:     deps.Logger,
		},
		Sweeper: sweeper,
		Relay:   relay,
	}
}

func NewInMemoryModule(seed []entities.Election, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections:  store,
		Races:      store,
		Ballots:    store,
		Votes:      store,
		Members:    store,
		Outbox:     store,
		OutboxRepo: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
