// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

var _ store.QuestionStore = (*questionStore)(nil)

type questionStore struct {
	db *sql.DB
}

func (s *questionStore) Create(ctx context.Context, q *store.Question) error {
	if q.ID == "" || q.StoreID == "" || q.QuestionText == "" {
		return ssgerr.New(ssgerr.CodeQuestionInvalidInput, "question id, store id, and text are required")
	}

	dataPoints, err := marshalDataPoints(q.DataPoints)
	if err != nil {
		return err
	}

	const query = `INSERT INTO questions (id, store_id, question_text, status, answer, confidence, query_used, data_points, processing_time_ms, error_message, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		q.ID,
		q.StoreID,
		q.QuestionText,
		string(q.Status),
		q.Answer,
		q.Confidence,
		q.QueryUsed,
		dataPoints,
		q.ProcessingTimeMS,
		q.ErrorMessage,
		formatTime(q.CreatedAt),
		formatTime(q.UpdatedAt),
	)
	if err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "creating question",
			ssgerr.FieldQuestionID(q.ID))
	}
	return nil
}

const questionColumns = `id, store_id, question_text, status, answer, confidence, query_used, data_points, processing_time_ms, error_message, created_at, updated_at`

func (s *questionStore) Get(ctx context.Context, id string) (*store.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)

	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, ssgerr.Errorf(ssgerr.CodeQuestionNotFound, "question %s not found", id)
	}
	return q, err
}

func (s *questionStore) Update(ctx context.Context, q *store.Question) error {
	dataPoints, err := marshalDataPoints(q.DataPoints)
	if err != nil {
		return err
	}

	const query = `UPDATE questions SET status = ?, answer = ?, confidence = ?, query_used = ?,
data_points = ?, processing_time_ms = ?, error_message = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		string(q.Status),
		q.Answer,
		q.Confidence,
		q.QueryUsed,
		dataPoints,
		q.ProcessingTimeMS,
		q.ErrorMessage,
		formatTime(time.Now()),
		q.ID,
	)
	if err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "updating question",
			ssgerr.FieldQuestionID(q.ID))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "checking rows affected",
			ssgerr.FieldQuestionID(q.ID))
	}
	if rows == 0 {
		return ssgerr.Errorf(ssgerr.CodeQuestionNotFound, "question %s not found", q.ID)
	}
	return nil
}

func (s *questionStore) ListByStore(ctx context.Context, storeID string, opts store.ListOpts) ([]*store.Question, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	const query = `SELECT ` + questionColumns + ` FROM questions
WHERE store_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, storeID, limit, opts.Offset)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "listing questions",
			ssgerr.FieldStoreID(storeID))
	}
	defer rows.Close()

	questions := []*store.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "iterating question rows")
	}
	return questions, nil
}

func (s *questionStore) CountByStore(ctx context.Context, storeID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE store_id = ?`, storeID).Scan(&n)
	if err != nil {
		return 0, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "counting questions",
			ssgerr.FieldStoreID(storeID))
	}
	return n, nil
}

func scanQuestion(row rowScanner) (*store.Question, error) {
	var q store.Question
	var dataPoints, createdAt, updatedAt string

	err := row.Scan(
		&q.ID,
		&q.StoreID,
		&q.QuestionText,
		&q.Status,
		&q.Answer,
		&q.Confidence,
		&q.QueryUsed,
		&dataPoints,
		&q.ProcessingTimeMS,
		&q.ErrorMessage,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "scanning question row")
	}

	if dataPoints != "" && dataPoints != "[]" {
		if err := json.Unmarshal([]byte(dataPoints), &q.DataPoints); err != nil {
			return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "unmarshalling data points")
		}
	}

	q.CreatedAt = parseTime(createdAt)
	q.UpdatedAt = parseTime(updatedAt)

	return &q, nil
}

func marshalDataPoints(dp []map[string]any) (string, error) {
	if dp == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(dp)
	if err != nil {
		return "", ssgerr.Wrap(err, ssgerr.CodeQuestionInvalidInput, "marshalling data points")
	}
	return string(raw), nil
}
