package genetic_screen

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	cp "github.com/jinzhu/copier"

	sqlite "github.com/glebarez/sqlite"
	gorm "gorm.io/gorm"
)

type PersistenceConfig struct {
	Name          string   `toml:"name"`
	Path          string   `toml:"path"`
	SQLitePragmas []string `toml:"sqlite_pragmas"`
	SQLiteOptions []string `toml:"sqlite_options"`
}

type Persistence struct {
	Config *PersistenceConfig
	DB     *gorm.DB
}

// SearchRun is one full Search invocation: the config it ran with and its
// terminal state.
type SearchRun struct {
	ID        uint
	CreatedAt time.Time

	PopulationSize int
	Dimension      int
	Seed           int64
	Workers        int

	Steps  int
	Repeat int

	Outcome     string
	FinalStep   int
	BestFitness float64

	Generations []*GenerationRecord
	Candidates  []*CandidateRecord
}

// GenerationRecord is one generation's metrics snapshot within a run.
type GenerationRecord struct {
	ID          uint
	SearchRunID uint
	Step        int

	BestFitness  float64
	MeanFitness  float64
	WorstFitness float64

	UniqueGenotypes int
	MeanSimilarity  float64
}

// CandidateRecord is one member of a run's final population, ranked as the
// reduction left it (rank 0 is the best found).
type CandidateRecord struct {
	ID          uint
	SearchRunID uint
	Rank        int
	Genotype    string
	Fitness     float64
}

func NewPersistence(config *PersistenceConfig) (*Persistence, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if len(config.Path) == 0 {
		return nil, fmt.Errorf("Path to database must be defined")
	}

	if len(config.Name) == 0 {
		return nil, fmt.Errorf("Name of database must be defined")
	}

	params := make([]string, 0, len(config.SQLitePragmas)+len(config.SQLiteOptions))
	for _, prag := range config.SQLitePragmas {
		params = append(params, fmt.Sprintf("_pragma=%s", prag))
	}
	params = append(params, config.SQLiteOptions...)

	var path strings.Builder
	path.WriteString(filepath.Join(config.Path, config.Name))
	if len(params) > 0 {
		path.WriteRune('?')
		path.WriteString(strings.Join(params, "&"))
	}

	db, err := gorm.Open(sqlite.Open(path.String()), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	db = db.Session(&gorm.Session{PrepareStmt: true, CreateBatchSize: 1000})

	p := &Persistence{Config: config, DB: db}
	if err = p.initialize(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Persistence) initialize() error {
	return p.DB.AutoMigrate(
		&SearchRun{},
		&GenerationRecord{},
		&CandidateRecord{},
	)
}

func (p *Persistence) Shutdown() {
	if sqldb, err := p.DB.DB(); err != nil {
		log.Fatalf("Failed to retrieve raw DB: %v", err)
	} else {
		sqldb.Close()
	}
}

// BeginRun creates a SearchRun row for the given config and returns a
// Recorder bound to it, suitable for GeneticAlgorithm.SetRecorder.
func (p *Persistence) BeginRun(config *AlgorithmConfig, steps, repeat int) (*RunRecorder, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	run := &SearchRun{Steps: steps, Repeat: repeat}
	cp.Copy(run, config)

	if result := p.DB.Create(run); result.Error != nil {
		return nil, fmt.Errorf("failed to create search run: %w", result.Error)
	}
	return &RunRecorder{persist: p, Run: run}, nil
}

// LoadRun fetches a run with its generation history and final population.
func (p *Persistence) LoadRun(runID uint) (*SearchRun, error) {
	var run SearchRun
	result := p.DB.
		Preload("Generations", func(db *gorm.DB) *gorm.DB { return db.Order("step") }).
		Preload("Candidates", func(db *gorm.DB) *gorm.DB { return db.Order("rank") }).
		First(&run, runID)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, result.Error)
	}
	return &run, nil
}

// ListRuns returns all runs, newest first, without their associations.
func (p *Persistence) ListRuns() ([]*SearchRun, error) {
	var runs []*SearchRun
	if result := p.DB.Order("id desc").Find(&runs); result.Error != nil {
		return nil, fmt.Errorf("failed to list runs: %w", result.Error)
	}
	return runs, nil
}

// BestRun returns the finished run with the highest recorded best fitness.
// Returns nil if no run has finished.
func (p *Persistence) BestRun() (*SearchRun, error) {
	var run SearchRun
	result := p.DB.Where("outcome <> ''").Order("best_fitness desc").Limit(1).Find(&run)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query best run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &run, nil
}

// RunRecorder streams one search's progress into the database.
type RunRecorder struct {
	persist *Persistence
	Run     *SearchRun
}

func (r *RunRecorder) RecordGeneration(step int, metrics *PopulationMetrics) error {
	record := &GenerationRecord{
		SearchRunID:     r.Run.ID,
		Step:            step,
		BestFitness:     metrics.BestFitness,
		MeanFitness:     metrics.MeanFitness,
		WorstFitness:    metrics.WorstFitness,
		UniqueGenotypes: metrics.UniqueGenotypes,
		MeanSimilarity:  metrics.MeanSimilarity,
	}
	if result := r.persist.DB.Create(record); result.Error != nil {
		return fmt.Errorf("failed to persist generation record: %w", result.Error)
	}
	return nil
}

func (r *RunRecorder) RecordOutcome(outcome string, step int, population []Candidate, fitness []float64) error {
	records := make([]*CandidateRecord, len(population))
	for i, c := range population {
		records[i] = &CandidateRecord{
			SearchRunID: r.Run.ID,
			Rank:        i,
			Genotype:    c.Genotype(),
			Fitness:     fitness[i],
		}
	}
	if len(records) > 0 {
		if result := r.persist.DB.Create(&records); result.Error != nil {
			return fmt.Errorf("failed to persist final population: %w", result.Error)
		}
	}

	r.Run.Outcome = outcome
	r.Run.FinalStep = step
	if len(fitness) > 0 {
		r.Run.BestFitness = maxFitness(fitness)
	}
	if result := r.persist.DB.Model(r.Run).Updates(map[string]any{
		"outcome":      r.Run.Outcome,
		"final_step":   r.Run.FinalStep,
		"best_fitness": r.Run.BestFitness,
	}); result.Error != nil {
		return fmt.Errorf("failed to finalize search run: %w", result.Error)
	}
	return nil
}
