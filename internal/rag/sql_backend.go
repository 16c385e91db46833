package rag

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"studyplanner/internal/model"
)

// SQLBackend keeps chunks and their embeddings in the relational database
// and ranks them in process.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Name() string { return "sql" }

func (b *SQLBackend) Migrate() error {
	if err := b.db.AutoMigrate(&model.SyllabusChunk{}); err != nil {
		return fmt.Errorf("migrate syllabus chunks failed: %w", err)
	}
	return nil
}

// Replace deletes every chunk and inserts records in one transaction.
func (b *SQLBackend) Replace(ctx context.Context, records []Record) error {
	rows := make([]model.SyllabusChunk, len(records))
	for i, rec := range records {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata failed: %w", err)
		}
		rows[i] = model.SyllabusChunk{
			ID:         rec.ID,
			Source:     stringField(rec.Metadata, "source"),
			ChunkIndex: intField(rec.Metadata, "chunk_index"),
			Content:    rec.Text,
			Metadata:   datatypes.JSON(meta),
		}
		rows[i].SetEmbedding(rec.Vector)
	}

	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SyllabusChunk{}).Error; err != nil {
			return fmt.Errorf("delete syllabus chunks failed: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return fmt.Errorf("insert syllabus chunks failed: %w", err)
		}
		return nil
	})
}

func (b *SQLBackend) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	var rows []model.SyllabusChunk
	if err := b.db.WithContext(ctx).Order("chunk_index ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list syllabus chunks failed: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for i := range rows {
		meta := map[string]any{}
		if len(rows[i].Metadata) > 0 {
			_ = json.Unmarshal(rows[i].Metadata, &meta)
		}
		results = append(results, Result{
			ID:       rows[i].ID,
			Text:     rows[i].Content,
			Metadata: meta,
			Score:    cosineSimilarity(vector, rows[i].EmbeddingVector()),
		})
	}
	return topK(results, k), nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
