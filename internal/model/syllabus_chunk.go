package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SyllabusChunk stores one indexed chunk and its embedding for the SQL vector backend.
// Embedding is stored as JSON array of float32 for portability.
type SyllabusChunk struct {
	ID         string         `gorm:"primaryKey;size:255" json:"id"`
	Source     string         `gorm:"size:255;not null;index" json:"source"`
	ChunkIndex int            `gorm:"not null" json:"chunk_index"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Metadata   datatypes.JSON `json:"metadata"`
	Embedding  string         `gorm:"type:text" json:"-"` // JSON array of float32
	CreatedAt  time.Time      `json:"created_at"`
}

func (SyllabusChunk) TableName() string {
	return "syllabus_chunks"
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *SyllabusChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *SyllabusChunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
