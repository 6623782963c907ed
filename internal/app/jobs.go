package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/karadag/storefront/pkg/metrics"
)

// OprLogRetention operator log entries older than this are purged daily
const OprLogRetention = 365 * 24 * time.Hour

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
		metrics.Flush()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearExpireData)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask records host CPU (percent x100) and used memory (MB)
func (a *Application) SchedSystemMonitorTask() {
	defer recoverJob("system monitor")

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		metrics.SetGauge("system_cpuuse", int64(pct[0]*100))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.SetGauge("system_memuse", megabytes(vm.Used))
	}
}

// SchedProcessMonitorTask records the storefront process's own CPU and RSS
func (a *Application) SchedProcessMonitorTask() {
	defer recoverJob("process monitor")

	self, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		zap.L().Debug("process monitor unavailable", zap.Error(err))
		return
	}
	if pct, err := self.CPUPercent(); err == nil {
		metrics.SetGauge("storefront_cpuuse", int64(pct*100))
	}
	if mi, err := self.MemoryInfo(); err == nil {
		metrics.SetGauge("storefront_memuse", megabytes(mi.RSS))
	}
}

func megabytes(b uint64) int64 {
	return int64(b >> 20) //nolint:gosec // at most 2^44
}

func recoverJob(name string) {
	if err := recover(); err != nil {
		zap.L().Error("job panicked", zap.String("job", name), zap.Any("error", err))
	}
}

// SchedClearExpireData purges operator log entries past OprLogRetention
func (a *Application) SchedClearExpireData() {
	defer recoverJob("oprlog purge")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	st, err := a.Stores(ctx)
	if err != nil {
		zap.L().Warn("skip oprlog purge", zap.Error(err))
		return
	}
	n, err := st.OprLogs.DeleteBefore(ctx, time.Now().Add(-OprLogRetention))
	if err != nil {
		zap.L().Error("oprlog purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged operator logs", zap.Int64("count", n))
	}
}
