package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kassa/kassa/internal/utils"
	"github.com/kassa/kassa/pkg/category"
	"github.com/kassa/kassa/pkg/ledger"
	"github.com/kassa/kassa/pkg/recurring"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	CategoryRepo    category.CategoryRepo
	CategoryService *category.CategoryServiceImpl
	CategoryHandler *category.CategoryHandler

	RuleRepo     recurring.RuleRepo
	Materializer *recurring.MaterializerImpl
	RuleService  *recurring.ServiceImpl
	RuleHandler  *recurring.Handler

	EntryRepo    ledger.EntryRepo
	EntryService *ledger.ServiceImpl
	EntryHandler *ledger.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.CategoryRepo = category.NewCategoryRepo(db)
	deps.CategoryService = category.NewCategoryService(deps.CategoryRepo)
	deps.CategoryHandler = category.NewCategoryHandler(deps.CategoryService)

	deps.RuleRepo = recurring.NewRuleRepo(db)
	deps.EntryRepo = ledger.NewEntryRepo(db)
	deps.Materializer = recurring.NewMaterializer(deps.RuleRepo, deps.EntryRepo)

	deps.RuleService = recurring.NewRuleService(deps.RuleRepo, deps.Materializer)
	deps.RuleHandler = recurring.NewHandler(deps.RuleService)

	deps.EntryService = ledger.NewEntryService(deps.EntryRepo, deps.Materializer, deps.Clock)
	deps.EntryHandler = ledger.NewHandler(deps.EntryService)

	return deps
}
