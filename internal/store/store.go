package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/multimediallc/movie-awards/internal/ingest"
	"github.com/multimediallc/movie-awards/pkg/awards"
	f "github.com/multimediallc/movie-awards/pkg/functional"
)

type NotFoundError struct {
	Kind string
	IDs  []uint
}

func (e NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s with id %d not found", e.Kind, e.IDs[0])
	}
	return fmt.Sprintf("%s with ids %v not found", e.Kind, e.IDs)
}

// Store persists movies and producers
type Store interface {
	awards.WinnerSource

	Movies(ctx context.Context) ([]*Movie, error)
	Movie(ctx context.Context, id uint) (*Movie, error)
	CreateMovie(ctx context.Context, in MovieInput) (*Movie, error)
	UpdateMovie(ctx context.Context, id uint, in MovieInput) (*Movie, error)
	DeleteMovie(ctx context.Context, id uint) error

	Producers(ctx context.Context) ([]*Producer, error)
	Producer(ctx context.Context, id uint) (*Producer, error)
	CreateProducer(ctx context.Context, in ProducerInput) (*Producer, error)
	UpdateProducer(ctx context.Context, id uint, in ProducerInput) (*Producer, error)
	DeleteProducer(ctx context.Context, id uint) error
	// ProducersByIDs fails with NotFoundError unless every id exists
	ProducersByIDs(ctx context.Context, ids []uint) ([]*Producer, error)

	// Import loads catalogue rows, creating one producer per distinct name
	Import(ctx context.Context, rows []ingest.Row) (ImportSummary, error)
	Close() error
}

type ImportSummary struct {
	Movies    int
	Winners   int
	Producers int
}

type GormStore struct {
	db *gorm.DB
}

// Open connects to the sqlite database at dsn and migrates the schema.
// gorm's own log goes to logWriter: warnings and slow queries, or every statement when verbose.
func Open(dsn string, logWriter io.Writer, verbose bool) (*GormStore, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	gormLogger := logger.New(log.New(logWriter, "", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection also keeps a shared in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Movie{}, &Producer{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func preloadProducers(db *gorm.DB) *gorm.DB {
	return db.Order("producers.id")
}

func (s *GormStore) Movies(ctx context.Context) ([]*Movie, error) {
	movies := make([]*Movie, 0)
	err := s.db.WithContext(ctx).Preload("Producers", preloadProducers).Order("id").Find(&movies).Error
	return movies, err
}

func (s *GormStore) Movie(ctx context.Context, id uint) (*Movie, error) {
	return findMovie(s.db.WithContext(ctx), id)
}

func findMovie(db *gorm.DB, id uint) (*Movie, error) {
	var movie Movie
	err := db.Preload("Producers", preloadProducers).First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError{Kind: "Movie", IDs: []uint{id}}
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (s *GormStore) CreateMovie(ctx context.Context, in MovieInput) (*Movie, error) {
	var created *Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		producers, err := producersByIDs(tx, in.ProducerIDs)
		if err != nil {
			return err
		}
		movie := &Movie{
			Title:     in.Title,
			Year:      in.Year,
			Studios:   in.Studios,
			Winner:    in.Winner,
			Producers: producers,
		}
		if err := tx.Omit("Producers.*").Create(movie).Error; err != nil {
			return err
		}
		created, err = findMovie(tx, movie.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *GormStore) UpdateMovie(ctx context.Context, id uint, in MovieInput) (*Movie, error) {
	var updated *Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movie, err := findMovie(tx, id)
		if err != nil {
			return err
		}
		producers, err := producersByIDs(tx, in.ProducerIDs)
		if err != nil {
			return err
		}
		err = tx.Model(movie).
			Select("Title", "Year", "Studios", "Winner").
			Updates(Movie{Title: in.Title, Year: in.Year, Studios: in.Studios, Winner: in.Winner}).Error
		if err != nil {
			return err
		}
		if err := tx.Model(movie).Omit("Producers.*").Association("Producers").Replace(producers); err != nil {
			return err
		}
		updated, err = findMovie(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GormStore) DeleteMovie(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movie, err := findMovie(tx, id)
		if err != nil {
			return err
		}
		return tx.Select("Producers").Delete(movie).Error
	})
}

func (s *GormStore) Producers(ctx context.Context) ([]*Producer, error) {
	producers := make([]*Producer, 0)
	err := s.db.WithContext(ctx).Order("id").Find(&producers).Error
	return producers, err
}

func (s *GormStore) Producer(ctx context.Context, id uint) (*Producer, error) {
	return findProducer(s.db.WithContext(ctx), id)
}

func findProducer(db *gorm.DB, id uint) (*Producer, error) {
	var producer Producer
	err := db.First(&producer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError{Kind: "Producer", IDs: []uint{id}}
	}
	if err != nil {
		return nil, err
	}
	return &producer, nil
}

func (s *GormStore) CreateProducer(ctx context.Context, in ProducerInput) (*Producer, error) {
	producer := &Producer{Name: in.Name}
	if err := s.db.WithContext(ctx).Create(producer).Error; err != nil {
		return nil, err
	}
	return producer, nil
}

func (s *GormStore) UpdateProducer(ctx context.Context, id uint, in ProducerInput) (*Producer, error) {
	var updated *Producer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		producer, err := findProducer(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(producer).Update("name", in.Name).Error; err != nil {
			return err
		}
		updated = producer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GormStore) DeleteProducer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		producer, err := findProducer(tx, id)
		if err != nil {
			return err
		}
		return tx.Select("Movies").Delete(producer).Error
	})
}

func (s *GormStore) ProducersByIDs(ctx context.Context, ids []uint) ([]*Producer, error) {
	return producersByIDs(s.db.WithContext(ctx), ids)
}

func producersByIDs(db *gorm.DB, ids []uint) ([]*Producer, error) {
	ids = f.RemoveDuplicates(slices.Clone(ids))
	producers := make([]*Producer, 0, len(ids))
	if len(ids) == 0 {
		return producers, nil
	}
	if err := db.Where("id IN ?", ids).Order("id").Find(&producers).Error; err != nil {
		return nil, err
	}
	if len(producers) != len(ids) {
		found := f.NewSet[uint]()
		for _, p := range producers {
			found.Add(p.ID)
		}
		missing := f.Filtered(ids, func(id uint) bool { return !found.Contains(id) })
		return nil, NotFoundError{Kind: "Producer", IDs: missing}
	}
	return producers, nil
}

// WinnerMovies returns every winning movie with its producers, ordered by id
func (s *GormStore) WinnerMovies(ctx context.Context) ([]awards.Movie, error) {
	movies := make([]*Movie, 0)
	err := s.db.WithContext(ctx).
		Preload("Producers", preloadProducers).
		Where("winner = ?", true).
		Order("id").
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return f.Map(movies, (*Movie).toAwards), nil
}

// Import creates the movies of rows in a single transaction. Producers are matched by
// name against those already stored, so importing twice does not duplicate them.
func (s *GormStore) Import(ctx context.Context, rows []ingest.Row) (ImportSummary, error) {
	summary := ImportSummary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		names := ingest.ProducerNames(rows)
		byName := make(map[string]*Producer, len(names))
		if len(names) > 0 {
			existing := make([]*Producer, 0)
			if err := tx.Where("name IN ?", names).Order("id").Find(&existing).Error; err != nil {
				return err
			}
			for _, p := range existing {
				if _, ok := byName[p.Name]; !ok {
					byName[p.Name] = p
				}
			}
		}
		toCreate := make([]*Producer, 0)
		for _, name := range names {
			if _, ok := byName[name]; !ok {
				p := &Producer{Name: name}
				byName[name] = p
				toCreate = append(toCreate, p)
			}
		}
		if len(toCreate) > 0 {
			if err := tx.CreateInBatches(toCreate, 100).Error; err != nil {
				return fmt.Errorf("create producers: %w", err)
			}
		}

		movies := f.Map(rows, func(row ingest.Row) *Movie {
			return &Movie{
				Title:   row.Title,
				Year:    row.Year,
				Studios: row.Studios,
				Winner:  row.Winner,
				Producers: f.Map(row.UniqueProducers(), func(name string) *Producer {
					return byName[name]
				}),
			}
		})
		if len(movies) > 0 {
			if err := tx.Omit("Producers.*").CreateInBatches(movies, 100).Error; err != nil {
				return fmt.Errorf("create movies: %w", err)
			}
		}

		summary = ImportSummary{
			Movies:    len(movies),
			Winners:   f.Count(rows, func(row ingest.Row) bool { return row.Winner }),
			Producers: len(toCreate),
		}
		return nil
	})
	return summary, err
}
