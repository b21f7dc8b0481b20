package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/agentlance/agentlance/internal/agents"
	"github.com/agentlance/agentlance/internal/mesh"
	"github.com/agentlance/agentlance/internal/registry"
	"github.com/agentlance/agentlance/pkg/models"
)

// stubAgent is a scripted capability provider for router tests. It
// records the execution contexts it receives and the order in which
// executions start and finish.
type stubAgent struct {
	skill   models.Skill
	content string
	err     error
	delay   time.Duration

	mu       sync.Mutex
	contexts []agents.Context
	calls    int
}

func (a *stubAgent) Execute(ctx context.Context, subtask *models.Subtask, execCtx agents.Context) (*models.Deliverable, error) {
	a.mu.Lock()
	a.contexts = append(a.contexts, execCtx)
	a.calls++
	a.mu.Unlock()

	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if a.err != nil {
		return nil, a.err
	}
	return &models.Deliverable{
		Kind:     models.DeliverableText,
		Content:  a.content,
		Metadata: map[string]string{"agent": string(a.skill)},
	}, nil
}

func (a *stubAgent) CanHandle(subtask *models.Subtask) bool { return subtask.RequiredSkill == a.skill }
func (a *stubAgent) Estimate(subtask *models.Subtask) int   { return 1 }

func (a *stubAgent) lastContext() agents.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.contexts) == 0 {
		return agents.Context{}
	}
	return a.contexts[len(a.contexts)-1]
}

// orchestratorStub returns a canned decomposition.
type orchestratorStub struct {
	decomposition *models.Decomposition
	raw           string
	err           error
}

func (o *orchestratorStub) Execute(ctx context.Context, subtask *models.Subtask, execCtx agents.Context) (*models.Deliverable, error) {
	if o.err != nil {
		return nil, o.err
	}
	content := o.raw
	if content == "" {
		data, err := json.Marshal(o.decomposition)
		if err != nil {
			return nil, err
		}
		content = string(data)
	}
	return &models.Deliverable{Kind: models.DeliverableText, Content: content}, nil
}

func (o *orchestratorStub) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == models.SkillOrchestration
}
func (o *orchestratorStub) Estimate(subtask *models.Subtask) int { return 1 }

type fixture struct {
	registry *registry.Registry
	mesh     *mesh.Mesh
	router   *Router
}

func newFixture() *fixture {
	reg := registry.New()
	m := mesh.New()
	return &fixture{registry: reg, mesh: m, router: New(reg, m)}
}

func (f *fixture) registerAgent(t *testing.T, name string, a agents.Agent, skills ...models.Skill) *models.AgentProfile {
	t.Helper()
	p := &models.AgentProfile{Name: name, Role: name, Skills: skills, Rating: 5.0}
	if _, err := f.registry.Register(p, a); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return p
}

func (f *fixture) submitAndWait(t *testing.T, job *models.Job) *models.Job {
	t.Helper()
	f.router.SubmitJob(job)
	select {
	case <-f.router.Done(job.ID):
	case <-time.After(5 * time.Second):
		t.Fatalf("job %s did not finish", job.ID)
	}
	return job
}

func countEvents(events []models.Event, kind models.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

func TestSimpleJobCompletes(t *testing.T) {
	f := newFixture()
	writer := f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "draft"}, models.SkillWriting)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Write a post",
		RequiredSkills: []models.Skill{models.SkillWriting},
	})

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if len(job.Deliverables) != 1 {
		t.Fatalf("expected 1 deliverable, got %d", len(job.Deliverables))
	}
	if job.Deliverables[0].Content != "draft" {
		t.Errorf("unexpected deliverable content %q", job.Deliverables[0].Content)
	}
	if got := f.registry.Profile(writer.ID).JobsCompleted; got != 1 {
		t.Errorf("expected jobs completed 1, got %d", got)
	}
	if f.registry.Profile(writer.ID).Status != models.AgentStatusAvailable {
		t.Error("expected agent to be released after execution")
	}

	events := f.mesh.History(job.ID, 0)
	if countEvents(events, models.EventJobCompleted) != 1 {
		t.Error("expected exactly one job_completed event")
	}
}

func TestNoProviderFailsJob(t *testing.T) {
	f := newFixture()

	job := f.submitAndWait(t, &models.Job{
		Title:          "Write a post",
		RequiredSkills: []models.Skill{models.SkillWriting},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	events := f.mesh.History(job.ID, 0)
	if countEvents(events, models.EventJobFailed) != 1 {
		t.Error("expected exactly one job_failed event")
	}
	if countEvents(events, models.EventJobCompleted) != 0 {
		t.Error("expected no job_completed event")
	}
	for _, e := range events {
		if e.Type == models.EventJobFailed {
			data := e.Data.(models.JobFailedData)
			if data.Error == "" {
				t.Error("expected a no-provider error message")
			}
		}
	}
}

func TestBusyProviderFailsJobImmediately(t *testing.T) {
	f := newFixture()
	artist := f.registerAgent(t, "Pixel", &stubAgent{skill: models.SkillImage, content: "img"}, models.SkillImage)
	f.registry.SetStatus(artist.ID, models.AgentStatusBusy)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Design a logo",
		RequiredSkills: []models.Skill{models.SkillImage},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	for _, st := range job.Subtasks {
		if st.Status == models.SubtaskStatusInProgress || st.Status == models.SubtaskStatusCompleted {
			t.Errorf("subtask %s should never have started, status %s", st.ID, st.Status)
		}
	}
	events := f.mesh.History(job.ID, 0)
	if countEvents(events, models.EventSubtaskStarted) != 0 {
		t.Error("expected no subtask_started events")
	}
	if countEvents(events, models.EventJobFailed) != 1 {
		t.Error("expected exactly one job_failed event")
	}
}

func TestExecutionFailureFailsJob(t *testing.T) {
	f := newFixture()
	writer := f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, err: errors.New("generation blew up")}, models.SkillWriting)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Write a post",
		RequiredSkills: []models.Skill{models.SkillWriting},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if got := f.registry.Profile(writer.ID).JobsCompleted; got != 0 {
		t.Errorf("expected jobs completed 0, got %d", got)
	}
	if f.registry.Profile(writer.ID).Status != models.AgentStatusAvailable {
		t.Error("expected agent to be released even on failure")
	}

	events := f.mesh.History(job.ID, 0)
	if countEvents(events, models.EventSubtaskFailed) != 1 {
		t.Error("expected exactly one subtask_failed event")
	}
	for _, e := range events {
		if e.Type == models.EventSubtaskFailed {
			data := e.Data.(models.SubtaskFailedData)
			if data.Error != "generation blew up" {
				t.Errorf("unexpected error text %q", data.Error)
			}
		}
	}
}

func TestWritingVoiceScenario(t *testing.T) {
	f := newFixture()
	writer := &stubAgent{skill: models.SkillWriting, content: "the script"}
	voice := &stubAgent{skill: models.SkillVoice, content: "narration.mp3"}
	f.registerAgent(t, "Nova", writer, models.SkillWriting)
	f.registerAgent(t, "Echo", voice, models.SkillVoice)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "script first, then narration",
		Subtasks: []models.SubtaskSpec{
			{Title: "write script", Description: "write it", RequiredSkill: models.SkillWriting},
			{Title: "narrate", Description: "read it", RequiredSkill: models.SkillVoice, Dependencies: []int{0}},
		},
	}}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Narrated explainer",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if len(job.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(job.Subtasks))
	}
	for _, st := range job.Subtasks {
		if st.Status != models.SubtaskStatusCompleted {
			t.Errorf("subtask %s expected completed, got %s", st.Title, st.Status)
		}
	}
	if len(job.Deliverables) != 2 {
		t.Fatalf("expected 2 deliverables, got %d", len(job.Deliverables))
	}
	// The narration execution must have received the script as input.
	if got := voice.lastContext().InputText; got != "the script" {
		t.Errorf("expected narration context to carry the script, got %q", got)
	}

	events := f.mesh.History(job.ID, 0)
	if countEvents(events, models.EventJobDecomposed) != 1 {
		t.Error("expected exactly one job_decomposed event")
	}
	if countEvents(events, models.EventHandoff) != 1 {
		t.Error("expected exactly one handoff event for the script handoff")
	}
}

func TestDependencyOrdering(t *testing.T) {
	// B depends on A; B must never start before A completes, for any
	// interleaving. The A stub sleeps so a premature B start would win
	// the race and be observed.
	f := newFixture()

	var mu sync.Mutex
	var sequence []string
	record := func(s string) {
		mu.Lock()
		sequence = append(sequence, s)
		mu.Unlock()
	}

	a := &recordingAgent{skill: models.SkillWriting, delay: 50 * time.Millisecond, record: record, name: "A"}
	b := &recordingAgent{skill: models.SkillVoice, record: record, name: "B"}
	f.registerAgent(t, "Nova", a, models.SkillWriting)
	f.registerAgent(t, "Echo", b, models.SkillVoice)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "ordered",
		Subtasks: []models.SubtaskSpec{
			{Title: "A", RequiredSkill: models.SkillWriting},
			{Title: "B", RequiredSkill: models.SkillVoice, Dependencies: []int{0}},
		},
	}}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Ordered work",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	want := []string{"A start", "A done", "B start", "B done"}
	mu.Lock()
	defer mu.Unlock()
	if len(sequence) != len(want) {
		t.Fatalf("expected sequence %v, got %v", want, sequence)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Fatalf("expected sequence %v, got %v", want, sequence)
		}
	}
}

// recordingAgent logs start/done markers for ordering assertions.
type recordingAgent struct {
	skill  models.Skill
	name   string
	delay  time.Duration
	record func(string)
}

func (a *recordingAgent) Execute(ctx context.Context, subtask *models.Subtask, execCtx agents.Context) (*models.Deliverable, error) {
	a.record(a.name + " start")
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	a.record(a.name + " done")
	return &models.Deliverable{Kind: models.DeliverableText, Content: a.name}, nil
}
func (a *recordingAgent) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == a.skill
}
func (a *recordingAgent) Estimate(subtask *models.Subtask) int { return 1 }

func TestIndependentSubtasksRunInOneWave(t *testing.T) {
	f := newFixture()
	writer := &stubAgent{skill: models.SkillWriting, content: "copy", delay: 30 * time.Millisecond}
	artist := &stubAgent{skill: models.SkillImage, content: "banner", delay: 30 * time.Millisecond}
	f.registerAgent(t, "Nova", writer, models.SkillWriting)
	f.registerAgent(t, "Pixel", artist, models.SkillImage)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "independent",
		Subtasks: []models.SubtaskSpec{
			{Title: "copy", RequiredSkill: models.SkillWriting},
			{Title: "banner", RequiredSkill: models.SkillImage},
		},
	}}, models.SkillOrchestration)

	start := time.Now()
	job := f.submitAndWait(t, &models.Job{
		Title:          "Landing page",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillImage},
	})
	elapsed := time.Since(start)

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	// Both ran in the same wave, so total time is near one delay, not two.
	if elapsed > 55*time.Millisecond {
		t.Errorf("expected concurrent execution, took %v", elapsed)
	}
}

func TestDecompositionErrorFailsJob(t *testing.T) {
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "x"}, models.SkillWriting)
	f.registerAgent(t, "Echo", &stubAgent{skill: models.SkillVoice, content: "y"}, models.SkillVoice)
	f.registerAgent(t, "Nexus", &orchestratorStub{err: errors.New("model unavailable")}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Narrated explainer",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	events := f.mesh.History(job.ID, 0)
	for _, e := range events {
		if e.Type == models.EventJobFailed {
			data := e.Data.(models.JobFailedData)
			if data.Error == "" {
				t.Error("expected the decomposition error to be carried in the failure event")
			}
		}
	}
}

func TestDecompositionParseFailureFailsJob(t *testing.T) {
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "x"}, models.SkillWriting)
	f.registerAgent(t, "Echo", &stubAgent{skill: models.SkillVoice, content: "y"}, models.SkillVoice)
	f.registerAgent(t, "Nexus", &orchestratorStub{raw: "this is not json"}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Narrated explainer",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
}

func TestDecompositionCycleFailsJob(t *testing.T) {
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "x"}, models.SkillWriting)
	f.registerAgent(t, "Echo", &stubAgent{skill: models.SkillVoice, content: "y"}, models.SkillVoice)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "cyclic",
		Subtasks: []models.SubtaskSpec{
			{Title: "a", RequiredSkill: models.SkillWriting, Dependencies: []int{1}},
			{Title: "b", RequiredSkill: models.SkillVoice, Dependencies: []int{0}},
		},
	}}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Cyclic work",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if countEvents(f.mesh.History(job.ID, 0), models.EventSubtaskStarted) != 0 {
		t.Error("expected no subtask to start on a cyclic decomposition")
	}
}

func TestUnassignableSubtaskFailsJob(t *testing.T) {
	// Voice has no provider: the narrate subtask stays unassigned and
	// the scheduling loop runs dry after the first wave.
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "x"}, models.SkillWriting)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "missing skill",
		Subtasks: []models.SubtaskSpec{
			{Title: "write", RequiredSkill: models.SkillWriting},
			{Title: "narrate", RequiredSkill: models.SkillVoice},
		},
	}}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Narrated explainer",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	// The assigned sibling still completed; failure is local.
	var write *models.Subtask
	for _, st := range job.Subtasks {
		if st.Title == "write" {
			write = st
		}
	}
	if write == nil || write.Status != models.SubtaskStatusCompleted {
		t.Error("expected the assigned subtask to complete")
	}
}

func TestSiblingFailureDoesNotStopWave(t *testing.T) {
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "copy"}, models.SkillWriting)
	f.registerAgent(t, "Pixel", &stubAgent{skill: models.SkillImage, err: errors.New("render failed")}, models.SkillImage)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "independent",
		Subtasks: []models.SubtaskSpec{
			{Title: "copy", RequiredSkill: models.SkillWriting},
			{Title: "banner", RequiredSkill: models.SkillImage},
		},
	}}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Landing page",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillImage},
	})

	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	statuses := map[string]models.SubtaskStatus{}
	for _, st := range job.Subtasks {
		statuses[st.Title] = st.Status
	}
	if statuses["copy"] != models.SubtaskStatusCompleted {
		t.Errorf("expected copy completed, got %s", statuses["copy"])
	}
	if statuses["banner"] != models.SubtaskStatusFailed {
		t.Errorf("expected banner failed, got %s", statuses["banner"])
	}
	// Completed sibling's deliverable is still aggregated.
	if len(job.Deliverables) != 1 {
		t.Errorf("expected 1 deliverable, got %d", len(job.Deliverables))
	}
}

func TestOrchestrationFallbackToSimplePath(t *testing.T) {
	// Multi-skill job but no orchestration agent registered: the job is
	// routed as a simple job using its first skill.
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "copy"}, models.SkillWriting)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Everything",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillVoice},
	})

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if len(job.Subtasks) != 1 {
		t.Fatalf("expected 1 subtask, got %d", len(job.Subtasks))
	}
}

func TestRateJob(t *testing.T) {
	f := newFixture()
	writer := f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "copy"}, models.SkillWriting)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Write a post",
		RequiredSkills: []models.Skill{models.SkillWriting},
	})
	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}

	if _, err := f.router.RateJob(job.ID, 0.5, ""); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 0.5, got %v", err)
	}
	if _, err := f.router.RateJob(job.ID, 5.5, ""); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 5.5, got %v", err)
	}
	if _, err := f.router.RateJob("missing", 4.0, ""); !errors.Is(err, ErrNotRatable) {
		t.Errorf("expected ErrNotRatable for missing job, got %v", err)
	}

	rated, err := f.router.RateJob(job.ID, 4.0, "solid work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 4.0 {
		t.Error("expected rating to be stored on the job")
	}
	if rated.Review != "solid work" {
		t.Error("expected review to be stored on the job")
	}
	// First rated job: the rating replaces the seed average.
	if got := f.registry.Profile(writer.ID).Rating; got != 4.0 {
		t.Errorf("expected agent rating 4.0, got %v", got)
	}
}

func TestRateJobRejectsNonCompleted(t *testing.T) {
	f := newFixture()
	job := f.submitAndWait(t, &models.Job{
		Title:          "Write a post",
		RequiredSkills: []models.Skill{models.SkillWriting},
	})
	if job.Status != models.JobStatusFailed {
		t.Fatalf("expected failed (no provider), got %s", job.Status)
	}
	if _, err := f.router.RateJob(job.ID, 4.0, ""); !errors.Is(err, ErrNotRatable) {
		t.Errorf("expected ErrNotRatable for failed job, got %v", err)
	}
	if job.Rating != nil {
		t.Error("expected no rating stored on rejected rate")
	}
}

func TestListJobsSubmissionOrder(t *testing.T) {
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "x"}, models.SkillWriting)

	var ids []string
	for i := 0; i < 3; i++ {
		job := f.submitAndWait(t, &models.Job{
			Title:          fmt.Sprintf("job-%d", i),
			RequiredSkills: []models.Skill{models.SkillWriting},
		})
		ids = append(ids, job.ID)
	}

	listed := f.router.ListJobs()
	if len(listed) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(listed))
	}
	for i, job := range listed {
		if job.ID != ids[i] {
			t.Errorf("position %d out of submission order", i)
		}
	}
}

func TestConcurrentJobsProgressIndependently(t *testing.T) {
	f := newFixture()
	f.registerAgent(t, "Nova", &stubAgent{skill: models.SkillWriting, content: "x", delay: 20 * time.Millisecond}, models.SkillWriting)
	f.registerAgent(t, "Cipher", &stubAgent{skill: models.SkillCode, content: "y", delay: 20 * time.Millisecond}, models.SkillCode)

	j1 := f.router.SubmitJob(&models.Job{Title: "a", RequiredSkills: []models.Skill{models.SkillWriting}})
	j2 := f.router.SubmitJob(&models.Job{Title: "b", RequiredSkills: []models.Skill{models.SkillCode}})

	for _, id := range []string{j1.ID, j2.ID} {
		select {
		case <-f.router.Done(id):
		case <-time.After(5 * time.Second):
			t.Fatalf("job %s did not finish", id)
		}
	}
	if j1.Status != models.JobStatusCompleted || j2.Status != models.JobStatusCompleted {
		t.Errorf("expected both jobs completed, got %s and %s", j1.Status, j2.Status)
	}
}

func TestLastDependencyWinsForContext(t *testing.T) {
	// Two dependencies both produce input text; the later one in the
	// dependency list must win.
	f := newFixture()
	first := &stubAgent{skill: models.SkillWriting, content: "first"}
	second := &stubAgent{skill: models.SkillCode, content: "second"}
	sink := &stubAgent{skill: models.SkillVoice, content: "done"}
	f.registerAgent(t, "Nova", first, models.SkillWriting)
	f.registerAgent(t, "Cipher", second, models.SkillCode)
	f.registerAgent(t, "Echo", sink, models.SkillVoice)
	f.registerAgent(t, "Nexus", &orchestratorStub{decomposition: &models.Decomposition{
		Reasoning: "fan-in",
		Subtasks: []models.SubtaskSpec{
			{Title: "one", RequiredSkill: models.SkillWriting},
			{Title: "two", RequiredSkill: models.SkillCode},
			{Title: "merge", RequiredSkill: models.SkillVoice, Dependencies: []int{0, 1}},
		},
	}}, models.SkillOrchestration)

	job := f.submitAndWait(t, &models.Job{
		Title:          "Fan-in",
		RequiredSkills: []models.Skill{models.SkillWriting, models.SkillCode, models.SkillVoice},
	})

	if job.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if got := sink.lastContext().InputText; got != "second" {
		t.Errorf("expected the later dependency to win, got %q", got)
	}
}
