package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Recurring rules
	r.HandleFunc("/api/recurring", deps.RuleHandler.ListRules).Methods("GET")
	r.HandleFunc("/api/recurring", deps.RuleHandler.CreateRule).Methods("POST")
	r.HandleFunc("/api/recurring/materialize", deps.RuleHandler.Materialize).Queries("from", "{from}", "to", "{to}").Methods("POST")
	r.HandleFunc("/api/recurring/{ruleId}", deps.RuleHandler.GetRule).Methods("GET")
	r.HandleFunc("/api/recurring/{ruleId}", deps.RuleHandler.UpdateRule).Methods("PUT")
	r.HandleFunc("/api/recurring/{ruleId}", deps.RuleHandler.DeactivateRule).Methods("DELETE")

	// Ledger
	r.HandleFunc("/api/transactions", deps.EntryHandler.GetTransactions).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/transactions", deps.EntryHandler.CreateTransaction).Methods("POST")
	r.HandleFunc("/api/transactions/{entryUid}", deps.EntryHandler.DeleteTransaction).Methods("DELETE")
	r.HandleFunc("/api/dashboard/transactions", deps.EntryHandler.GetDashboardTransactions).Methods("GET")

	// Categories
	r.HandleFunc("/api/category", deps.CategoryHandler.GetCategories).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.UpdateCategory).Methods("PUT")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.DeleteCategory).Methods("DELETE")
}
