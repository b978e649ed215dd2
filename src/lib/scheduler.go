package lib

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var (
	schedulerMu sync.Mutex
	scheduler   gocron.Scheduler
)

func GetScheduler() (gocron.Scheduler, error) {
	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

// CreateCronJob registers task to run every interval. Runs never overlap.
func CreateCronJob(name string, interval time.Duration, task any, args ...any) (string, error) {
	sched, err := GetScheduler()
	if err != nil {
		return "", err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task, args...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", err
	}
	return j.ID().String(), nil
}

func StopScheduler() error {
	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	if scheduler == nil {
		return nil
	}
	err := scheduler.Shutdown()
	scheduler = nil
	return err
}
