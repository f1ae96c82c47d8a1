// internal/app/algorithm/dispatcher.go
package algorithm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teamlens/teamlens/internal/app/system/notify"
	"github.com/teamlens/teamlens/internal/app/teams"
	"github.com/teamlens/teamlens/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultMaxWorkers bounds concurrent algorithm invocations when no
// explicit limit is configured.
const DefaultMaxWorkers = 10

// jobTimeout caps a single external invocation. The activity's status
// machine has no failed state, so a job that exceeds this leaves the
// activity in "running" like any other worker failure.
const jobTimeout = 15 * time.Minute

// ActivityStatus is the slice of the activity store the dispatcher
// needs: reading an activity and flipping its algorithm status.
type ActivityStatus interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Activity, error)
	SetAlgorithmStatus(ctx context.Context, activityID primitive.ObjectID, status string) error
}

// GroupCreator turns one proposed team into a persisted group.
// Satisfied by *teams.Engine.
type GroupCreator interface {
	CreateGroup(ctx context.Context, activityID primitive.ObjectID, input teams.GroupInput) (models.GroupWithMembers, error)
}

// NoticeSender delivers the completion notice to the owning teacher.
// Satisfied by *notify.Notifier.
type NoticeSender interface {
	Send(ctx context.Context, userID primitive.ObjectID, notice models.Notification)
}

type job struct {
	id         uuid.UUID
	activityID primitive.ObjectID
	payload    []byte
}

// Dispatcher runs grouping-algorithm jobs against an external process
// with bounded concurrency. At most maxWorkers jobs execute at once;
// overflow waits in an unbounded FIFO queue. Submission is
// fire-and-forget: completion is observed via the activity's
// algorithm_status field and the teacher's notifications.
type Dispatcher struct {
	runner     Runner
	groups     GroupCreator
	activities ActivityStatus
	notifier   NoticeSender
	log        *zap.Logger
	maxWorkers int

	mu     sync.Mutex
	active int
	queue  []job

	wg sync.WaitGroup
}

func NewDispatcher(runner Runner, groups GroupCreator, activities ActivityStatus, notifier NoticeSender, logger *zap.Logger, maxWorkers int) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Dispatcher{
		runner:     runner,
		groups:     groups,
		activities: activities,
		notifier:   notifier,
		log:        logger,
		maxWorkers: maxWorkers,
	}
}

// jobPayload is what the external program receives as its argument.
type jobPayload struct {
	ActivityID    string          `json:"activityId"`
	AlgorithmData json.RawMessage `json:"algorithmData"`
}

// Submit marks the activity as running and enqueues a job. If fewer
// than maxWorkers jobs are active the job starts immediately;
// otherwise it waits its turn in FIFO order. Once enqueued a job
// cannot be withdrawn.
func (d *Dispatcher) Submit(ctx context.Context, activityID primitive.ObjectID, config json.RawMessage) error {
	payload, err := json.Marshal(jobPayload{
		ActivityID:    activityID.Hex(),
		AlgorithmData: config,
	})
	if err != nil {
		return fmt.Errorf("marshal algorithm payload: %w", err)
	}

	if err := d.activities.SetAlgorithmStatus(ctx, activityID, models.AlgorithmRunning); err != nil {
		return err
	}

	j := job{id: uuid.New(), activityID: activityID, payload: payload}

	d.mu.Lock()
	if d.active < d.maxWorkers {
		d.active++
		d.start(j)
	} else {
		d.queue = append(d.queue, j)
		d.log.Info("algorithm job queued",
			zap.String("job_id", j.id.String()),
			zap.String("activity_id", activityID.Hex()),
			zap.Int("queue_len", len(d.queue)))
	}
	d.mu.Unlock()
	return nil
}

// Wait blocks until every active and queued job has finished. Used at
// shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// start launches a worker for the job. Caller holds d.mu and has
// already accounted for the worker in d.active.
func (d *Dispatcher) start(j job) {
	d.wg.Add(1)
	go d.run(j)
}

func (d *Dispatcher) run(j job) {
	defer d.wg.Done()
	// The decrement and queue advance happen exactly once per job,
	// whatever the outcome.
	defer d.complete()

	// Jobs outlive the submitting HTTP request, so they never inherit
	// its context.
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	out, err := d.runner.Run(ctx, j.payload)
	if err != nil {
		// No failed terminal state exists: the activity stays in
		// "running" until an operator intervenes.
		d.log.Error("algorithm worker failed",
			zap.String("job_id", j.id.String()),
			zap.String("activity_id", j.activityID.Hex()),
			zap.Error(err))
		return
	}

	d.finish(ctx, j, out)
}

// complete releases the worker slot and promotes the next queued job,
// preserving submission order.
func (d *Dispatcher) complete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active--
	if len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		d.active++
		d.start(next)
	}
}

// finish turns the algorithm's proposed partition into groups. Each
// team is created independently: a failure (for instance the engine's
// own narrowing legitimately rejecting a team) is logged and does not
// abort the remaining teams.
func (d *Dispatcher) finish(ctx context.Context, j job, out []byte) {
	var partition [][]string
	if err := json.Unmarshal(out, &partition); err != nil {
		d.log.Error("algorithm output is not a partition",
			zap.String("job_id", j.id.String()),
			zap.String("activity_id", j.activityID.Hex()),
			zap.Error(err))
		return
	}

	for i, team := range partition {
		name := fmt.Sprintf("Group %d", i+1)
		students, err := parseStudentIDs(team)
		if err != nil {
			d.log.Warn("skipping team with malformed student ids",
				zap.String("job_id", j.id.String()),
				zap.String("team", name),
				zap.Error(err))
			continue
		}
		if _, err := d.groups.CreateGroup(ctx, j.activityID, teams.GroupInput{Name: name, Students: students}); err != nil {
			d.log.Warn("creating team from algorithm result failed",
				zap.String("job_id", j.id.String()),
				zap.String("activity_id", j.activityID.Hex()),
				zap.String("team", name),
				zap.Error(err))
		}
	}

	if err := d.activities.SetAlgorithmStatus(ctx, j.activityID, models.AlgorithmDone); err != nil {
		d.log.Error("marking algorithm done failed",
			zap.String("job_id", j.id.String()),
			zap.String("activity_id", j.activityID.Hex()),
			zap.Error(err))
		return
	}

	activity, err := d.activities.GetByID(ctx, j.activityID)
	if err != nil {
		d.log.Warn("loading activity for completion notice failed",
			zap.String("activity_id", j.activityID.Hex()), zap.Error(err))
		return
	}
	d.notifier.Send(ctx, activity.TeacherID, notify.AlgorithmFinished(activity))

	d.log.Info("algorithm job finished",
		zap.String("job_id", j.id.String()),
		zap.String("activity_id", j.activityID.Hex()),
		zap.Int("teams", len(partition)))
}

func parseStudentIDs(team []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(team))
	for _, s := range team {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("bad student id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
