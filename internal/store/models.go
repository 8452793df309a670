package store

import (
	"github.com/multimediallc/movie-awards/pkg/awards"
	f "github.com/multimediallc/movie-awards/pkg/functional"
)

type Movie struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Title     string      `gorm:"not null;size:255" json:"title"`
	Year      int         `gorm:"not null;index" json:"year"`
	Studios   string      `gorm:"size:255" json:"studios"`
	Winner    bool        `gorm:"not null;index" json:"winner"`
	Producers []*Producer `gorm:"many2many:movie_producers;" json:"producers"`
}

func (Movie) TableName() string {
	return "movies"
}

type Producer struct {
	ID     uint     `gorm:"primaryKey" json:"id"`
	Name   string   `gorm:"not null;size:255;index" json:"name"`
	Movies []*Movie `gorm:"many2many:movie_producers;" json:"-"`
}

func (Producer) TableName() string {
	return "producers"
}

// MovieInput carries the writable fields of a movie
type MovieInput struct {
	Title       string
	Year        int
	Studios     string
	Winner      bool
	ProducerIDs []uint
}

type ProducerInput struct {
	Name string
}

func (p *Producer) toAwards() awards.Producer {
	return awards.Producer{ID: awards.ProducerID(p.ID), Name: p.Name}
}

func (m *Movie) toAwards() awards.Movie {
	return awards.Movie{
		ID:        m.ID,
		Title:     m.Title,
		Year:      m.Year,
		Studios:   m.Studios,
		Winner:    m.Winner,
		Producers: f.Map(m.Producers, (*Producer).toAwards),
	}
}
