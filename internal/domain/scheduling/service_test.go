package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"pawpal/internal/domain/pets"
	"pawpal/internal/domain/tasks"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testTaskRepo struct {
	byID  map[string]tasks.Task
	order []string
}

func newTestTaskRepo() *testTaskRepo {
	return &testTaskRepo{byID: map[string]tasks.Task{}}
}

func (r *testTaskRepo) Create(ctx context.Context, t tasks.Task) error {
	if t.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[t.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[t.ID] = t.Clone()
	r.order = append(r.order, t.ID)
	return nil
}

func (r *testTaskRepo) Update(ctx context.Context, t tasks.Task) error {
	if _, ok := r.byID[t.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[t.ID] = t.Clone()
	return nil
}

func (r *testTaskRepo) GetByID(ctx context.Context, id string) (tasks.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return tasks.Task{}, errRepoNotFound
	}
	return t.Clone(), nil
}

func (r *testTaskRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]tasks.Task, error) {
	out := make([]tasks.Task, 0)
	for _, id := range r.order {
		if t := r.byID[id]; t.OwnerUserID == ownerUserID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *testTaskRepo) ListByPet(ctx context.Context, petID string) ([]tasks.Task, error) {
	out := make([]tasks.Task, 0)
	for _, id := range r.order {
		if t := r.byID[id]; t.PetID == petID && petID != "" {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *testTaskRepo) len() int { return len(r.order) }

type testPetRepo struct {
	byID  map[string]pets.Pet
	order []string
}

func newTestPetRepo() *testPetRepo {
	return &testPetRepo{byID: map[string]pets.Pet{}}
}

func (r *testPetRepo) Create(ctx context.Context, p pets.Pet) error {
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *testPetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, errRepoNotFound
	}
	return p, nil
}

func (r *testPetRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for _, id := range r.order {
		if p := r.byID[id]; p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

// -------------------------
// Helpers
// -------------------------

const owner = "owner-1"

// todayAt fija "hoy" para los tests: 2025-03-10, reloj del service a las 12:00.
func todayAt(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func newTestService() (*Service, *testTaskRepo, *testPetRepo) {
	taskRepo := newTestTaskRepo()
	petRepo := newTestPetRepo()
	svc := NewService(taskRepo, petRepo)
	svc.now = func() time.Time { return todayAt(12, 0) }
	return svc, taskRepo, petRepo
}

func seedPet(t *testing.T, repo *testPetRepo, id, name string) pets.Pet {
	t.Helper()
	p := pets.Pet{ID: id, OwnerUserID: owner, Name: name, Breed: "mixed", Age: 3}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed pet %s: %v", id, err)
	}
	return p
}

// -------------------------
// ScheduleWalk
// -------------------------

func TestService_ScheduleWalk_CreatesWalkAndCompanionTask(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")

	start := todayAt(8, 0)
	res, err := svc.ScheduleWalk(context.Background(), owner, ScheduleWalkInput{
		PetID: "pet-1", Start: start, Duration: 30,
	})
	if err != nil {
		t.Fatalf("ScheduleWalk: %v", err)
	}
	if res.Rejected() {
		t.Fatalf("unexpected rejection: %v", res.Conflicts)
	}

	task := res.Task
	if task.Description != "Walk Buddy" {
		t.Fatalf("description = %q, want %q", task.Description, "Walk Buddy")
	}
	if task.Priority != tasks.PriorityHigh {
		t.Fatalf("priority = %q, want high", task.Priority)
	}
	if !task.DueDate.Equal(start) {
		t.Fatalf("due date = %v, want %v", task.DueDate, start)
	}
	if task.Walk == nil || task.Walk.Status != tasks.WalkStatusScheduled {
		t.Fatalf("expected scheduled walk attached, got %+v", task.Walk)
	}
	if task.Walk.Duration != 30 || !task.Walk.ScheduledTime.Equal(start) {
		t.Fatalf("walk window = %v/%d", task.Walk.ScheduledTime, task.Walk.Duration)
	}

	// quedó comprometida en el arena
	stored, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("stored task: %v", err)
	}
	if stored.PetID != "pet-1" || stored.OwnerUserID != owner {
		t.Fatalf("stored refs = %q/%q", stored.PetID, stored.OwnerUserID)
	}
}

func TestService_ScheduleWalk_ValidatesInput(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")

	cases := []ScheduleWalkInput{
		{PetID: "pet-1", Start: todayAt(8, 0), Duration: 0},
		{PetID: "pet-1", Start: todayAt(8, 0), Duration: -15},
		{PetID: "pet-1", Duration: 30}, // start en cero
	}
	for i, in := range cases {
		if _, err := svc.ScheduleWalk(context.Background(), owner, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	if _, err := svc.ScheduleWalk(context.Background(), owner, ScheduleWalkInput{
		PetID: "ghost", Start: todayAt(8, 0), Duration: 30,
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pet, got %v", err)
	}
}

func TestService_ScheduleWalk_ForbiddenForForeignPet(t *testing.T) {
	svc, _, petRepo := newTestService()
	if err := petRepo.Create(context.Background(), pets.Pet{
		ID: "pet-x", OwnerUserID: "someone-else", Name: "Rex",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.ScheduleWalk(context.Background(), owner, ScheduleWalkInput{
		PetID: "pet-x", Start: todayAt(8, 0), Duration: 30,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// Escenario de referencia: 08:00/30 entra, 08:15/30 choca, 08:30/20 entra
// (espalda con espalda) y la agenda completa queda limpia porque el paseo
// rechazado nunca se comprometió.
func TestService_ScheduleWalk_OverlapRejectedBackToBackAllowed(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	first, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 0), Duration: 30,
	})
	if err != nil || first.Rejected() {
		t.Fatalf("first walk: err=%v conflicts=%v", err, first.Conflicts)
	}

	second, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 15), Duration: 30,
	})
	if err != nil {
		t.Fatalf("second walk: %v", err)
	}
	if !second.Rejected() {
		t.Fatalf("expected rejection for 08:15 overlap")
	}
	if len(second.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(second.Conflicts))
	}
	c := second.Conflicts[0]
	if c.PetName != "Buddy" || c.ExistingTaskID != first.Task.ID {
		t.Fatalf("conflict detail = %+v", c)
	}
	if c.Message() == "" {
		t.Fatalf("conflict message empty")
	}
	// el rechazo no creó nada
	if taskRepo.len() != 1 {
		t.Fatalf("rejected walk was committed: %d tasks", taskRepo.len())
	}

	third, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 30), Duration: 20,
	})
	if err != nil {
		t.Fatalf("third walk: %v", err)
	}
	if third.Rejected() {
		t.Fatalf("back-to-back walk rejected: %v", third.Conflicts)
	}

	pairs, err := svc.CheckAllConflicts(ctx, owner)
	if err != nil {
		t.Fatalf("CheckAllConflicts: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected clean schedule, got %d pairs", len(pairs))
	}
}

func TestService_ScheduleWalk_ReturnsAllConflicts(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	// dos paseos cortos separados
	for _, h := range []int{8, 9} {
		res, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
			PetID: "pet-1", Start: todayAt(h, 0), Duration: 30,
		})
		if err != nil || res.Rejected() {
			t.Fatalf("seed walk %d: err=%v", h, err)
		}
	}

	// ventana larga que pisa a los dos
	res, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(7, 45), Duration: 120,
	})
	if err != nil {
		t.Fatalf("ScheduleWalk: %v", err)
	}
	if len(res.Conflicts) != 2 {
		t.Fatalf("expected both conflicts reported, got %d", len(res.Conflicts))
	}
}

func TestService_ScheduleWalk_CompletedWalksDontConflict(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	first, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 0), Duration: 30,
	})
	if err != nil || first.Rejected() {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, owner, first.Task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// misma ventana exacta: la tarea completada ya no bloquea
	res, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 0), Duration: 30,
	})
	if err != nil {
		t.Fatalf("ScheduleWalk: %v", err)
	}
	if res.Rejected() {
		t.Fatalf("completed walk still conflicts: %v", res.Conflicts)
	}
}

func TestService_ScheduleWalk_OtherPetDoesNotConflict(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	seedPet(t, petRepo, "pet-2", "Whiskers")
	ctx := context.Background()

	if res, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 0), Duration: 30,
	}); err != nil || res.Rejected() {
		t.Fatalf("seed: %v", err)
	}

	res, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-2", Start: todayAt(8, 0), Duration: 30,
	})
	if err != nil {
		t.Fatalf("ScheduleWalk: %v", err)
	}
	if res.Rejected() {
		t.Fatalf("conflict across different pets: %v", res.Conflicts)
	}
}

// -------------------------
// CompleteTask + recurrencia
// -------------------------

func TestService_CompleteTask_DailySpawnsNextDay(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	start := todayAt(8, 0)
	created, err := svc.CreateRecurringTask(ctx, owner, CreateTaskInput{
		PetID: "pet-1", Description: "Feed Buddy", DueDate: start,
		Priority: "high", Recurrence: "daily",
	})
	if err != nil {
		t.Fatalf("CreateRecurringTask: %v", err)
	}

	res, err := svc.CompleteTask(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !res.Task.Completed {
		t.Fatalf("task not completed")
	}
	if res.Next == nil {
		t.Fatalf("expected successor")
	}

	next := *res.Next
	if !next.DueDate.Equal(start.AddDate(0, 0, 1)) {
		t.Fatalf("next due = %v, want %v", next.DueDate, start.AddDate(0, 0, 1))
	}
	if next.Completed {
		t.Fatalf("successor born completed")
	}
	if next.Description != "Feed Buddy" || next.Priority != tasks.PriorityHigh {
		t.Fatalf("successor lost metadata: %+v", next)
	}
	if next.Recurrence != tasks.RecurrenceDaily || next.PetID != "pet-1" || next.OwnerUserID != owner {
		t.Fatalf("successor lost refs: %+v", next)
	}
	if next.Walk != nil {
		t.Fatalf("walks must not be cloned")
	}
	if next.ID == created.ID {
		t.Fatalf("successor reused id")
	}
	if taskRepo.len() != 2 {
		t.Fatalf("expected exactly one successor, repo has %d", taskRepo.len())
	}
}

// Encadenado: completar N veces corre el vencimiento N períodos.
func TestService_CompleteTask_ChainAdvancesNPeriods(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	start := todayAt(8, 0)
	current, err := svc.CreateRecurringTask(ctx, owner, CreateTaskInput{
		PetID: "pet-1", Description: "Feed Buddy", DueDate: start,
		Priority: "high", Recurrence: "daily",
	})
	if err != nil {
		t.Fatalf("CreateRecurringTask: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		res, err := svc.CompleteTask(ctx, owner, current.ID)
		if err != nil {
			t.Fatalf("CompleteTask #%d: %v", i+1, err)
		}
		if res.Next == nil {
			t.Fatalf("chain broke at #%d", i+1)
		}
		current = *res.Next
	}

	want := start.AddDate(0, 0, n)
	if !current.DueDate.Equal(want) {
		t.Fatalf("after %d completions due = %v, want %v", n, current.DueDate, want)
	}
}

func TestService_CompleteTask_WeeklyAdvancesSevenDays(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	start := todayAt(10, 0)
	created, err := svc.CreateRecurringTask(ctx, owner, CreateTaskInput{
		PetID: "pet-1", Description: "Bath", DueDate: start,
		Priority: "medium", Recurrence: "weekly",
	})
	if err != nil {
		t.Fatalf("CreateRecurringTask: %v", err)
	}

	res, err := svc.CompleteTask(ctx, owner, created.ID)
	if err != nil || res.Next == nil {
		t.Fatalf("CompleteTask: err=%v next=%v", err, res.Next)
	}
	if !res.Next.DueDate.Equal(start.AddDate(0, 0, 7)) {
		t.Fatalf("weekly next = %v, want %v", res.Next.DueDate, start.AddDate(0, 0, 7))
	}
}

func TestService_CompleteTask_NoRecurrenceNoSuccessor(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, owner, CreateTaskInput{
		PetID: "pet-1", Description: "Vet visit", DueDate: todayAt(15, 0), Priority: "high",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	res, err := svc.CompleteTask(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if res.Next != nil {
		t.Fatalf("unexpected successor for non-recurring task")
	}
	if taskRepo.len() != 1 {
		t.Fatalf("task list length changed: %d", taskRepo.len())
	}
}

func TestService_CompleteTask_CompletesAttachedWalk(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	res, err := svc.ScheduleWalk(ctx, owner, ScheduleWalkInput{
		PetID: "pet-1", Start: todayAt(8, 0), Duration: 30,
	})
	if err != nil || res.Rejected() {
		t.Fatalf("seed walk: %v", err)
	}

	done, err := svc.CompleteTask(ctx, owner, res.Task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if done.Task.Walk == nil || done.Task.Walk.Status != tasks.WalkStatusCompleted {
		t.Fatalf("walk not completed with task: %+v", done.Task.Walk)
	}

	stored, _ := taskRepo.GetByID(ctx, res.Task.ID)
	if stored.Walk.Status != tasks.WalkStatusCompleted {
		t.Fatalf("stored walk status = %q", stored.Walk.Status)
	}
}

func TestService_CompleteTask_AlreadyCompletedIsNoop(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	created, err := svc.CreateRecurringTask(ctx, owner, CreateTaskInput{
		PetID: "pet-1", Description: "Feed Buddy", DueDate: todayAt(8, 0),
		Priority: "high", Recurrence: "daily",
	})
	if err != nil {
		t.Fatalf("CreateRecurringTask: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, owner, created.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	res, err := svc.CompleteTask(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if res.Next != nil {
		t.Fatalf("re-completing spawned another successor")
	}
	if taskRepo.len() != 2 {
		t.Fatalf("expected 2 tasks (original + one successor), got %d", taskRepo.len())
	}
}

func TestService_CompleteTask_ErrorsOnMissingOrForeign(t *testing.T) {
	svc, taskRepo, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	if _, err := svc.CompleteTask(ctx, owner, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	foreign := tasks.Task{ID: "t-x", OwnerUserID: "someone-else", Description: "x", DueDate: todayAt(9, 0)}
	if err := taskRepo.Create(ctx, foreign); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, owner, "t-x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// -------------------------
// CreateTask / CreateRecurringTask
// -------------------------

func TestService_CreateTask_Validation(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	cases := []CreateTaskInput{
		{Description: "", DueDate: todayAt(9, 0)},
		{Description: "x"}, // sin fecha
		{Description: "x", DueDate: todayAt(9, 0), Recurrence: "monthly"},
	}
	for i, in := range cases {
		if _, err := svc.CreateTask(ctx, owner, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	// prioridad desconocida: se tolera, no se valida
	created, err := svc.CreateTask(ctx, owner, CreateTaskInput{
		Description: "odd one", DueDate: todayAt(9, 0), Priority: "urgent",
	})
	if err != nil {
		t.Fatalf("unknown priority rejected: %v", err)
	}
	if created.Priority != tasks.Priority("urgent") {
		t.Fatalf("priority not passed through: %q", created.Priority)
	}

	// mascota ajena o inexistente
	if _, err := svc.CreateTask(ctx, owner, CreateTaskInput{
		PetID: "ghost", Description: "x", DueDate: todayAt(9, 0),
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_CreateRecurringTask_RequiresRecurrence(t *testing.T) {
	svc, _, petRepo := newTestService()
	seedPet(t, petRepo, "pet-1", "Buddy")
	ctx := context.Background()

	for _, rec := range []string{"", "none", "sometimes"} {
		if _, err := svc.CreateRecurringTask(ctx, owner, CreateTaskInput{
			PetID: "pet-1", Description: "Feed", DueDate: todayAt(8, 0), Recurrence: rec,
		}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("recurrence %q: expected ErrInvalidInput, got %v", rec, err)
		}
	}

	created, err := svc.CreateRecurringTask(ctx, owner, CreateTaskInput{
		PetID: "pet-1", Description: "Feed", DueDate: todayAt(8, 0),
		Priority: "high", Recurrence: "weekly",
	})
	if err != nil {
		t.Fatalf("CreateRecurringTask: %v", err)
	}
	if created.Recurrence != tasks.RecurrenceWeekly || created.Completed {
		t.Fatalf("created = %+v", created)
	}
	if created.Walk != nil {
		t.Fatalf("recurring task must not carry a walk")
	}
}
