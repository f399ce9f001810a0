package app

import (
	"database/sql"

	"github.com/jengzang/records-timeline/internal/analysis"
	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/repository"
	"github.com/jengzang/records-timeline/internal/service"
	"github.com/jengzang/records-timeline/internal/timeline"
)

// App wires repositories and services over one database
type App struct {
	Points    *repository.PointRepository
	Favorites *repository.FavoriteAreaRepository
	Locations *repository.LocationRepository
	Timelines *repository.TimelineRepository
	Trips     *repository.TripRepository
	Tasks     *repository.AnalysisTaskRepository

	Timeline         *service.TimelineService
	Reclassification *service.ReclassificationService
	TripService      *service.TripService
	Runner           *analysis.Runner
}

// New builds the application graph for db with the given thresholds
func New(db *sql.DB, cfg config.TimelineConfig) *App {
	a := &App{
		Points:    repository.NewPointRepository(db),
		Favorites: repository.NewFavoriteAreaRepository(db),
		Timelines: repository.NewTimelineRepository(db),
		Trips:     repository.NewTripRepository(db),
		Tasks:     repository.NewAnalysisTaskRepository(db),
	}
	a.Locations = repository.NewLocationRepository(db, a.Favorites)

	processor := timeline.NewProcessor(a.Favorites, a.Locations)
	a.Timeline = service.NewTimelineService(a.Points, a.Timelines, processor, cfg)
	a.Reclassification = service.NewReclassificationService(a.Trips)
	a.TripService = service.NewTripService(a.Trips)
	a.Runner = analysis.NewRunner(a.Tasks, analysis.Dependencies{
		Timeline:         a.Timeline,
		Reclassification: a.Reclassification,
		Config:           cfg,
	})

	return a
}
