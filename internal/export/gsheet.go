package export

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

// exportJob binds one sheet config to the sheets client built from that
// config's own credentials. Units exporting under different service
// accounts must never share a client.
type exportJob struct {
	cfg app.GSheetConfig
	svc *sheets.Service
}

// GSheetExporter periodically writes a grade matrix per unit into a Google
// sheet: one row per student, one column per assignment, "✓" for ungraded
// submissions and the grade text once graded.
type GSheetExporter struct {
	config    *app.Config
	store     store.PortalStore
	scheduler *gocron.Scheduler
	jobs      []exportJob
}

func buildJobs(configs []app.GSheetConfig, newService func(credentialsPath string) (*sheets.Service, error)) ([]exportJob, error) {
	jobs := make([]exportJob, 0, len(configs))
	for _, cfg := range configs {
		svc, err := newService(cfg.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service for unit %s: %w", cfg.Unit, err)
		}
		jobs = append(jobs, exportJob{cfg: cfg, svc: svc})
	}
	return jobs, nil
}

func NewGSheetExporter(config *app.Config, store store.PortalStore) (*GSheetExporter, error) {
	ctx := context.Background()

	jobs, err := buildJobs(config.GSheet, func(credentialsPath string) (*sheets.Service, error) {
		return sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	})
	if err != nil {
		return nil, err
	}

	exporter := &GSheetExporter{
		config:    config,
		store:     store,
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      jobs,
	}

	for _, job := range jobs {
		job := job
		_, err := exporter.scheduler.Cron(job.cfg.Schedule).Do(func() {
			if err := exporter.export(job); err != nil {
				logger.Error.Printf("Export for unit %s failed: %v", job.cfg.Unit, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	exporter.scheduler.StartAsync()
	return exporter, nil
}

func (e *GSheetExporter) export(job exportJob) error {
	unit, err := e.store.GetUnitByCode(job.cfg.Unit)
	if err != nil {
		return fmt.Errorf("failed to resolve unit %s: %w", job.cfg.Unit, err)
	}
	if unit == nil {
		return fmt.Errorf("unit %s does not exist", job.cfg.Unit)
	}

	rows, err := e.store.ListSubmissionsForUnit(unit.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch grades: %w", err)
	}

	values := e.buildMatrix(rows)

	writeRange := fmt.Sprintf("%s!A3", job.cfg.SheetName)
	_, err = job.svc.Spreadsheets.Values.Update(job.cfg.SheetID, writeRange,
		&sheets.ValueRange{Values: values}).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write grade matrix: %w", err)
	}

	updateRange := fmt.Sprintf("%s!A1", job.cfg.SheetName)
	_, err = job.svc.Spreadsheets.Values.Update(job.cfg.SheetID, updateRange,
		&sheets.ValueRange{Values: [][]interface{}{{e.timestampCell(time.Now())}}}).ValueInputOption("RAW").Do()

	return err
}

func (e *GSheetExporter) timestampCell(now time.Time) string {
	stamp := fmt.Sprintf("UPD: %s", now.Format("2 January 15:04"))
	if len(e.config.EmojiVariants) == 0 {
		return stamp
	}
	emoji := e.config.EmojiVariants[rand.Intn(len(e.config.EmojiVariants))]
	return stamp + " " + emoji
}

// buildMatrix pivots the flat export rows into a students × assignments
// grid. Column order follows first appearance, which the query already
// sorts by due date.
func (e *GSheetExporter) buildMatrix(rows []store.GradeExportRow) [][]interface{} {
	var assignments []string
	assignmentCol := make(map[string]int)
	var students []string
	studentRow := make(map[string]int)
	cells := make(map[string]map[string]string)

	for _, row := range rows {
		if _, ok := assignmentCol[row.AssignmentTitle]; !ok {
			assignmentCol[row.AssignmentTitle] = len(assignments)
			assignments = append(assignments, row.AssignmentTitle)
		}
		if _, ok := studentRow[row.StudentEmail]; !ok {
			studentRow[row.StudentEmail] = len(students)
			students = append(students, row.StudentEmail)
			cells[row.StudentEmail] = make(map[string]string)
		}

		value := "✓"
		if row.Status == models.StatusGraded {
			value = row.Grade
		}
		cells[row.StudentEmail][row.AssignmentTitle] = value
	}

	header := make([]interface{}, 0, len(assignments)+1)
	header = append(header, "student")
	for _, title := range assignments {
		header = append(header, title)
	}

	values := [][]interface{}{header}
	for _, email := range students {
		line := make([]interface{}, 0, len(assignments)+1)
		line = append(line, email)
		for _, title := range assignments {
			line = append(line, cells[email][title])
		}
		values = append(values, line)
	}
	return values
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}
