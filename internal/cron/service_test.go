package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shoplinehq/shopline-backend/pkg/logger"
)

type fakeLock struct {
	locked   bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(context.Context) (bool, error) {
	l.acquires++
	return !l.locked, nil
}

func (l *fakeLock) Release(context.Context) error {
	l.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	require.NoError(t, err)
	return svc
}

func TestRunCycleExecutesAllJobs(t *testing.T) {
	lock := &fakeLock{}
	first := &countingJob{name: "first"}
	second := &countingJob{name: "second", err: errors.New("boom")}
	third := &countingJob{name: "third"}

	svc := newTestService(t, lock, first, second, third)
	require.NoError(t, svc.runCycle(context.Background()))

	// A failing job must not stop the jobs after it.
	require.Equal(t, 1, first.runs)
	require.Equal(t, 1, second.runs)
	require.Equal(t, 1, third.runs)
	require.Equal(t, 1, lock.releases)
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLock{locked: true}
	job := &countingJob{name: "skipped"}

	svc := newTestService(t, lock, job)
	require.NoError(t, svc.runCycle(context.Background()))

	require.Zero(t, job.runs)
	require.Zero(t, lock.releases)
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
	})
	require.Error(t, err)
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "real"})
	registry.Register(nil)
	require.Len(t, registry.Jobs(), 1)
}
