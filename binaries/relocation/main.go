package main

import (
	"flag"
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/cloudtask/relocation/common/log/hooks"
	"github.com/cloudtask/relocation/common/stats"
	"github.com/cloudtask/relocation/descheduler"
	"github.com/cloudtask/relocation/runner"
)

// Task relocation daemon: runs descheduler planning passes on an interval
// against the configured eviction service and logs the resulting plans.
func main() {
	log.AddHook(hooks.NewContextHook())

	configFlag := flag.String("config", "", "Relocation config (a filename, or empty for defaults)")
	logLevelFlag := flag.String("log_level", "info", "Log everything at this level and above (error|info|debug)")
	flag.Parse()

	level, err := log.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Error(err)
		return
	}
	log.SetLevel(level)

	var configText []byte
	if *configFlag != "" {
		configText, err = ioutil.ReadFile(*configFlag)
		if err != nil {
			log.Fatal(err)
		}
	}
	config, err := runner.ParseConfig(configText)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Starting relocation daemon with config: %s", config)

	ops, err := runner.MakeOperations(config.Eviction)
	if err != nil {
		log.Fatal(err)
	}

	source := runner.NewStaticJobSource(nil, nil)
	if config.Runner.JobsFile != "" {
		source, err = runner.LoadJobsFile(config.Runner.JobsFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	stat := stats.DefaultStatsReceiver().Scope("relocation")
	handler := func(plans []descheduler.RelocationPlan) {
		for _, plan := range plans {
			log.Infof("Relocation planned: task %s of job %s (%s)", plan.TaskID, plan.JobID, plan.Reason)
		}
	}

	r := runner.NewRunner(ops, source, handler, stat, config.PassInterval())
	r.Start()
	defer r.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("Shutting down on signal: %v", sig)
	log.Infof("Final stats: %s", stat.Render(true))
}
