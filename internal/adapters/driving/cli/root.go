// Package cli implements the researchbot command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
	"github.com/researchbot/researchbot/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired in by the application entry point. Commands check for
// nil and fail with a clear error when run unwired.
var (
	reconcilerService driving.Reconciler
	indexWorker       driving.IndexWorker
	documentManager   driving.DocumentManager
	questionAnswerer  driving.QuestionAnswerer
	statusReporter    driving.StatusReporter
	configStore       driven.ConfigStore
	uploadDir         string
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "researchbot",
	Short: "Index local documents and ask questions about them",
	Long: `researchbot ingests documents from an upload directory, keeps a
catalog of their content fingerprints, and indexes them into per-document
vector collections for question answering.

Typical flow:
  researchbot upload report.pdf     copy a file in and queue indexing
  researchbot work                  execute queued index jobs
  researchbot ask <doc-id> "..."    ask a question about a document`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
}

// Services bundles everything the commands depend on.
type Services struct {
	Reconciler driving.Reconciler
	Worker     driving.IndexWorker
	Documents  driving.DocumentManager
	Answerer   driving.QuestionAnswerer
	Status     driving.StatusReporter
	Config     driven.ConfigStore

	// UploadDir is the directory the watch command observes.
	UploadDir string
}

// SetServices wires application services into the command tree.
func SetServices(s Services) {
	reconcilerService = s.Reconciler
	indexWorker = s.Worker
	documentManager = s.Documents
	questionAnswerer = s.Answerer
	statusReporter = s.Status
	configStore = s.Config
	uploadDir = s.UploadDir
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
