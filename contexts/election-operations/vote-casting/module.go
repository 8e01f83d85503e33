package votecasting

import (
	"log/slog"

	httpadapter "quorum/contexts/election-operations/vote-casting/adapters/http"
	"quorum/contexts/election-operations/vote-casting/adapters/memory"
	"quorum/contexts/election-operations/vote-casting/application/commands"
	"quorum/contexts/election-operations/vote-casting/application/queries"
	"quorum/contexts/election-operations/vote-casting/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Directory ports.ElectionDirectory
	Voters    ports.VoterRepository
	Votes     ports.VoteRepository
	Members   ports.MembershipReader
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	castUseCase := commands.CastUseCase{
		Directory: deps.Directory,
		Voters:    deps.Voters,
		Votes:     deps.Votes,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	voterUseCase := commands.VoterUseCase{
		Directory: deps.Directory,
		Voters:    deps.Voters,
		Members:   deps.Members,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	resultsQueries := queries.ResultsQueries{
		Directory: deps.Directory,
		Votes:     deps.Votes,
		Members:   deps.Members,
	}
	voterQueries := queries.VoterQueries{
		Directory: deps.Directory,
		Voters:    deps.Voters,
		Members:   deps.Members,
	}
	return Module{
		Handler: httpadapter.Handler{
			Casts:   castUseCase,
			Voters:  voterUseCase,
			Results: resultsQueries,
			Status:  voterQueries,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Directory: store,
		Voters:    store,
		Votes:     store,
		Members:   store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
