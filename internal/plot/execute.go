package plot

import (
	"context"
	"log/slog"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"

	"healthplots/internal/frame"
	"healthplots/pkg/contracts/domain"
)

// CategoriesFile is the pie-grid output of the patient chart set.
const CategoriesFile = "patient_categories.png"

// Job is one chart of a fixed set.
type Job struct {
	File string
	Run  func(df dataframe.DataFrame) error
}

// PatientJobs returns the patient chart set.
func (p *Plotter) PatientJobs() []Job {
	categories := []string{domain.ColAgeGroup, domain.ColGender, domain.ColBloodType, domain.ColMedicalCondition}
	relationships := []string{domain.ColGender, domain.ColBloodType, domain.ColMedicalCondition, domain.ColBillingCategory}

	jobs := []Job{
		{File: CategoriesFile, Run: func(df dataframe.DataFrame) error {
			return p.PlotCategories(df, categories, 2, 2, CategoriesFile)
		}},
		{File: DistributionFile(domain.ColAge), Run: func(df dataframe.DataFrame) error {
			return p.PlotColumnDistribution(df, domain.ColAge)
		}},
		{File: RelationshipsFile(domain.ColAgeGroup), Run: func(df dataframe.DataFrame) error {
			return p.PlotFieldRelationships(df, domain.ColAgeGroup, relationships)
		}},
	}

	pairs := [][2]string{
		{domain.ColBillingCategory, domain.ColAgeGroup},
		{domain.ColBillingCategory, domain.ColGender},
		{domain.ColBillingCategory, domain.ColMedicalCondition},
		{domain.ColBillingCategory, domain.ColLengthStayGroup},
		{domain.ColHospital, domain.ColBillingCategory},
	}
	for _, pair := range pairs {
		field, hue := pair[0], pair[1]
		jobs = append(jobs, Job{File: SingleRelationshipFile(field, hue), Run: func(df dataframe.DataFrame) error {
			return p.PlotSingleRelationship(df, field, hue)
		}})
	}
	return jobs
}

// VehicleJobs returns the vehicle listing chart set for df. The status
// column is optional; without it only the accident history is drawn.
func (p *Plotter) VehicleJobs(df dataframe.DataFrame) []Job {
	jobs := []Job{{File: AccidentHistoryFile, Run: p.PlotAccidentHistory}}
	if !frame.HasColumn(df, ColStatus) {
		p.logger.Warn("Skipping status chart, column not present",
			slog.String("column", ColStatus),
			slog.String("file", StatusVsValueFile))
		return jobs
	}
	return append(jobs, Job{File: StatusVsValueFile, Run: p.PlotStatusVsValue})
}

// ExecutePlots renders the patient chart set and returns the written paths.
func (p *Plotter) ExecutePlots(ctx context.Context, df dataframe.DataFrame) ([]string, error) {
	return p.Execute(ctx, df, p.PatientJobs())
}

// ExecuteVehiclePlots renders the vehicle chart set.
func (p *Plotter) ExecuteVehiclePlots(ctx context.Context, df dataframe.DataFrame) ([]string, error) {
	return p.Execute(ctx, df, p.VehicleJobs(df))
}

// Execute runs jobs concurrently, at most the configured number at a time.
// The first failure cancels the jobs not yet started and is returned. The
// frame is only read by the jobs.
func (p *Plotter) Execute(ctx context.Context, df dataframe.DataFrame, jobs []Job) ([]string, error) {
	p.logger.InfoContext(ctx, "Rendering charts",
		slog.Int("charts", len(jobs)),
		slog.Int("workers", p.workers),
		slog.String("dir", p.dir))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	done := make([]bool, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := job.Run(df); err != nil {
				return err
			}
			done[i] = true
			return nil
		})
	}

	err := g.Wait()

	var files []string
	for i, ok := range done {
		if ok {
			files = append(files, p.path(jobs[i].File))
		}
	}
	sort.Strings(files)

	if err != nil {
		return files, err
	}
	p.logger.InfoContext(ctx, "Charts rendered", slog.Int("charts", len(files)))
	return files, nil
}
