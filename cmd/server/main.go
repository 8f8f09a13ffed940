package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	unitHandler := handlers.NewUnitHandler(service)
	assignmentHandler := handlers.NewAssignmentHandler(service)
	submissionHandler := handlers.NewSubmissionHandler(service)
	adminHandler := handlers.NewAdminHandler(service)
	sessionHandler := handlers.NewSessionHandler(service)

	http.HandleFunc("POST /api/v1/units", unitHandler.HandleCreateUnit)
	http.HandleFunc("GET /api/v1/units", unitHandler.HandleListUnits)
	http.HandleFunc("POST /api/v1/units/{unit_id}/registration", unitHandler.HandleToggleRegistration)
	http.HandleFunc("GET /api/v1/registrations", unitHandler.HandleListRegistrations)

	http.HandleFunc("POST /api/v1/assignments", assignmentHandler.HandleCreateAssignment)
	http.HandleFunc("GET /api/v1/assignments", assignmentHandler.HandleListAssignments)
	http.HandleFunc("GET /api/v1/assignments/{assignment_id}", assignmentHandler.HandleAssignmentDetail)

	http.HandleFunc("POST "+handlers.SubmissionsRoute, submissionHandler.HandleSubmit)
	http.HandleFunc("GET "+handlers.SubmissionsRoute, submissionHandler.HandleListForAssignment)
	http.HandleFunc("GET /api/v1/submissions", submissionHandler.HandleListSubmissions)
	http.HandleFunc("POST "+handlers.GradeRoute, submissionHandler.HandleGrade)

	http.HandleFunc("GET /api/v1/admin/users", adminHandler.HandleListUsers)
	http.HandleFunc("POST /api/v1/admin/users", adminHandler.HandleRegisterUser)
	http.HandleFunc("POST /api/v1/admin/users/{user_id}/promote", adminHandler.HandlePromote)
	http.HandleFunc("POST /api/v1/admin/users/{user_id}/demote", adminHandler.HandleDemote)
	http.HandleFunc("GET /api/v1/admin/stats", adminHandler.HandleStats)

	http.HandleFunc("POST /api/v1/session/refresh", sessionHandler.HandleRefresh)
	http.HandleFunc("DELETE /api/v1/session", sessionHandler.HandleLogout)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting semla server on %s", service.Config.Server.Port)
	if !service.Config.Server.EnableAuth {
		logger.Info.Printf("Auth is DISABLED, trusting the %s header", service.Config.Server.DebugUserHeader)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Semla server failed: %v", err)
	}
}
