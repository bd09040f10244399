package services

import (
	"fmt"
	"log"

	"github.com/ekrako/AcadeMaster/internal/config"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult reports the reachability of the service's
// dependencies. Status is "healthy" only when both the database and
// the Authorizer instance respond.
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, state, msg string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	full := fmt.Sprintf("%s: %v", msg, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = full
	} else {
		r.ErrorMessage += "; " + full
	}
	log.Printf("Health check failed - %s", full)
	switch component {
	case "database":
		r.Database = state
	case "authorizer":
		r.Authorizer = state
	}
}

// HealthCheck pings the database and the Authorizer instance.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.fail("database", "error", "database connection error", err)
	} else if err := sqlDB.Ping(); err != nil {
		result.fail("database", "unreachable", "database ping failed", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		result.fail("authorizer", "unreachable", "authorizer ping failed", err)
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
