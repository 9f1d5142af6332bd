package terminal

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/ports"
	"github.com/lab67/orderdesk/internal/core/service"
	"github.com/lab67/orderdesk/internal/infrastructure/health"
)

// Controller is the set of inputs the shell can emit.
type Controller interface {
	Refresh()
	SubmitCreate(ctx context.Context, form service.CreateOrderForm) (domain.Order, error)
	SubmitEdit(ctx context.Context, id string, form service.EditOrderForm) (domain.Order, error)
	SubmitFilter(form service.FilterForm) error
	SubmitLogin(ctx context.Context, username, credential string, expectedRole domain.Role) (domain.User, error)
	RequestLogout(ctx context.Context)
	RequestLoadMore() ports.PageInfo
	RequestAction(ctx context.Context, orderID, action string) error
	ShowStats(active bool) error
}

const helpText = `commands:
  login <username> <credential> [role]   start a session, optionally as a given role
  logout                                 end the session
  list                                   redraw the current view
  filter [author=..] [status=..]         filter the list; no arguments clears the filter
  more                                   load the next batch of orders
  create description=.. phone=.. service=in-venue|delivery guests=N [status=..]
  edit <id>                              show the edit form of an order
  edit <id> field=value ...              update description, date, author, phone, service, guests, status
  delete <id>                            delete an order
  assign <id>                            take a delivery (couriers)
  complete <id>                          close a delivery (couriers)
  stats [off]                            show or hide the manager statistics
  metrics                                show the order desk counters
  health                                 check the durable store
  help                                   show this text
  quit                                   exit`

// Shell reads one command per line and dispatches it to the controller.
type Shell struct {
	ctrl    Controller
	view    *View
	health  *health.Checker
	metrics prometheus.Gatherer
	log     zerolog.Logger
	prompt  string
}

func NewShell(ctrl Controller, view *View, checker *health.Checker, metrics prometheus.Gatherer, log zerolog.Logger) *Shell {
	return &Shell{ctrl: ctrl, view: view, health: checker, metrics: metrics, log: log, prompt: "> "}
}

// WithPrompt replaces the prompt printed before each command.
func (s *Shell) WithPrompt(p string) *Shell {
	s.prompt = p
	return s
}

// Run processes commands from in until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.view.printf("%s", s.prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := s.Exec(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// Exec runs a single command line. It reports whether the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		s.view.RenderError(err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	s.log.Debug().Str("command", cmd).Int("args", len(args)).Msg("command received")

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		s.view.RenderInfo("%s", helpText)
	case "list":
		s.ctrl.Refresh()
	case "more":
		s.ctrl.RequestLoadMore()
	case "logout":
		s.ctrl.RequestLogout(ctx)
	case "login":
		err = s.login(ctx, args)
	case "filter":
		err = s.filter(args)
	case "create":
		err = s.create(ctx, args)
	case "edit":
		err = s.edit(ctx, args)
	case "delete", "complete", "assign":
		err = s.action(ctx, cmd, args)
	case "stats":
		err = s.ctrl.ShowStats(len(args) == 0 || !strings.EqualFold(args[0], "off"))
	case "metrics":
		err = s.view.RenderMetrics(s.metrics)
	case "health":
		s.view.RenderHealth(s.health.Readiness(ctx))
	default:
		err = usage("unknown command %q, type help", cmd)
	}

	if err != nil {
		s.view.RenderError(err)
	}
	return false
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("login <username> <credential> [role]")
	}
	var role domain.Role
	if len(args) == 3 {
		role = domain.Role(strings.ToLower(args[2]))
	}
	user, err := s.ctrl.SubmitLogin(ctx, args[0], args[1], role)
	if err != nil {
		return err
	}
	s.view.RenderInfo("logged in as %s", user.Username)
	return nil
}

func (s *Shell) filter(args []string) error {
	form, err := filterForm(args)
	if err != nil {
		return err
	}
	return s.ctrl.SubmitFilter(form)
}

func (s *Shell) create(ctx context.Context, args []string) error {
	form, err := createForm(args)
	if err != nil {
		return err
	}
	created, err := s.ctrl.SubmitCreate(ctx, form)
	if err != nil {
		return err
	}
	s.view.RenderInfo("order %s created", created.ID)
	return nil
}

func (s *Shell) edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("edit <id> [field=value ...]")
	}
	id := args[0]
	if len(args) == 1 {
		return s.ctrl.RequestAction(ctx, id, "edit")
	}
	form, err := editForm(args[1:])
	if err != nil {
		return err
	}
	if _, err := s.ctrl.SubmitEdit(ctx, id, form); err != nil {
		return err
	}
	s.view.RenderInfo("order %s updated", id)
	return nil
}

func (s *Shell) action(ctx context.Context, name string, args []string) error {
	if len(args) != 1 {
		return usage("%s <id>", name)
	}
	return s.ctrl.RequestAction(ctx, args[0], name)
}
