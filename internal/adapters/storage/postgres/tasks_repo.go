package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pawpal/internal/domain/tasks"
)

// TasksRepo persiste tareas con su paseo embebido en columnas walk_* de la
// misma fila: un Walk pertenece a exactamente una Task, así que no hace
// falta tabla aparte y el Update queda atómico.
type TasksRepo struct {
	db *sql.DB
}

func NewTasksRepo(db *sql.DB) *TasksRepo {
	return &TasksRepo{db: db}
}

const taskColumns = `
	id, owner_user_id, pet_id,
	description, due_date, priority, recurrence, completed,
	walk_id, walk_scheduled_time, walk_duration, walk_status,
	created_at, updated_at
`

func (r *TasksRepo) Create(ctx context.Context, t tasks.Task) error {
	w := walkFields(t.Walk)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		t.ID,
		t.OwnerUserID,
		toNullString(t.PetID),
		t.Description,
		t.DueDate,
		string(t.Priority),
		string(t.Recurrence),
		t.Completed,
		w.id, w.scheduledTime, w.duration, w.status,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *TasksRepo) Update(ctx context.Context, t tasks.Task) error {
	w := walkFields(t.Walk)
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET
			description = $2,
			due_date = $3,
			priority = $4,
			recurrence = $5,
			completed = $6,
			walk_id = $7,
			walk_scheduled_time = $8,
			walk_duration = $9,
			walk_status = $10,
			updated_at = $11
		WHERE id = $1
	`,
		t.ID,
		t.Description,
		t.DueDate,
		string(t.Priority),
		string(t.Recurrence),
		t.Completed,
		w.id, w.scheduledTime, w.duration, w.status,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (tasks.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return tasks.Task{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, ErrNotFound
	}
	return t, err
}

func (r *TasksRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]tasks.Task, error) {
	return r.list(ctx, `owner_user_id = $1`, ownerUserID)
}

func (r *TasksRepo) ListByPet(ctx context.Context, petID string) ([]tasks.Task, error) {
	if strings.TrimSpace(petID) == "" {
		return []tasks.Task{}, nil
	}
	return r.list(ctx, `pet_id = $1`, petID)
}

func (r *TasksRepo) list(ctx context.Context, where string, arg any) ([]tasks.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE `+where+`
		ORDER BY seq ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]tasks.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (tasks.Task, error) {
	var (
		t          tasks.Task
		petID      sql.NullString
		priority   string
		recurrence string
		walkID     sql.NullString
		walkTime   sql.NullTime
		walkDur    sql.NullInt64
		walkStatus sql.NullString
	)

	err := s.Scan(
		&t.ID, &t.OwnerUserID, &petID,
		&t.Description, &t.DueDate, &priority, &recurrence, &t.Completed,
		&walkID, &walkTime, &walkDur, &walkStatus,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return tasks.Task{}, err
	}

	t.PetID = fromNullString(petID)
	t.Priority = tasks.Priority(priority)
	t.Recurrence = tasks.Recurrence(recurrence)

	if walkID.Valid {
		t.Walk = &tasks.Walk{
			ID:            walkID.String,
			PetID:         t.PetID,
			ScheduledTime: walkTime.Time,
			Duration:      int(walkDur.Int64),
			Status:        tasks.WalkStatus(fromNullString(walkStatus)),
		}
	}
	return t, nil
}

type nullWalk struct {
	id            sql.NullString
	scheduledTime sql.NullTime
	duration      sql.NullInt64
	status        sql.NullString
}

func walkFields(w *tasks.Walk) nullWalk {
	if w == nil {
		return nullWalk{}
	}
	return nullWalk{
		id:            sql.NullString{String: w.ID, Valid: true},
		scheduledTime: sql.NullTime{Time: w.ScheduledTime, Valid: true},
		duration:      sql.NullInt64{Int64: int64(w.Duration), Valid: true},
		status:        sql.NullString{String: string(w.Status), Valid: true},
	}
}
