// Package cli - команды taskctl поверх TaskStore.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/St1cky1/taskboard/internal/config"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/client"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// offline - команда не ходит в API (token)
const offlineAnnotation = "offline"

type GatewayFactory func(cfg *config.ClientConfig, log logrus.FieldLogger) (usecase.TaskGateway, error)

type Options struct {
	Out io.Writer
	Err io.Writer
	Now func() time.Time
	// NewGateway подменяется в тестах
	NewGateway GatewayFactory
}

type app struct {
	opts  Options
	cfg   *config.ClientConfig
	log   *logrus.Logger
	store *usecase.TaskStore

	apiURL  string
	token   string
	verbose bool
}

func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewGateway == nil {
		opts.NewGateway = httpGateway
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Task board client",
		Long: `taskctl works with a remote task board: list and search tasks,
show the board by status, the due-date calendar and reports, and create,
edit, move or delete tasks.

The API location and credential come from TASKS_API_URL and TASKS_API_TOKEN
(or --api-url / --token).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "tasks API base URL (overrides TASKS_API_URL)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "access token (overrides TASKS_API_TOKEN)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		a.dashboardCmd(),
		a.listCmd(),
		a.showCmd(),
		a.boardCmd(),
		a.calendarCmd(),
		a.upcomingCmd(),
		a.reportCmd(),
		a.addCmd(),
		a.editCmd(),
		a.moveCmd(),
		a.rmCmd(),
		a.tokenCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.token != "" {
		cfg.APIToken = a.token
	}
	a.cfg = cfg

	a.log = config.NewLogger(cfg.LogLevel)
	a.log.SetOutput(a.opts.Err)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	if cmd.Annotations[offlineAnnotation] == "true" {
		return nil
	}

	gw, err := a.opts.NewGateway(cfg, a.log)
	if err != nil {
		return err
	}
	a.store = usecase.NewTaskStore(gw, usecase.WithStoreLogger(a.log))
	return nil
}

func httpGateway(cfg *config.ClientConfig, log logrus.FieldLogger) (usecase.TaskGateway, error) {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})
	return client.NewTaskGateway(cfg.GatewayConfig(), tokens, log)
}

func (a *app) out() io.Writer {
	return a.opts.Out
}

// Describe переводит ошибку в сообщение для пользователя
func Describe(err error) string {
	var validationErr *entity.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	var opErr *entity.OperationError
	if !errors.As(err, &opErr) {
		return err.Error()
	}

	var reason string
	var remote *entity.RemoteError
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		reason = "not authorized, check TASKS_API_TOKEN"
	case errors.Is(err, entity.ErrForbidden):
		reason = "access denied"
	case errors.Is(err, entity.ErrTaskNotFound):
		reason = "task not found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		reason = "tasks API is unavailable, try again later"
	case errors.Is(err, entity.ErrMalformedResponse):
		reason = "unexpected response from tasks API"
	case errors.As(err, &remote):
		reason = remote.Error()
	default:
		reason = opErr.Err.Error()
	}
	return fmt.Sprintf("failed to %s tasks: %s", opErr.Op, reason)
}
