package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/presentation/tui"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/muesli/termenv"
)

// ErrUsage is returned for malformed simulator commands.
var ErrUsage = errors.New("usage")

const helpText = `Commands:
  go <screen> [key=value ...]     navigate (screens: %s)
  where                           show the current route
  tools [text]                    search the catalog
  tool <id>                       show a tool
  compare add|rm <id>             change the comparison tray
  compare clear|show
  wizards                         list wizards
  wizard <name> next|back|reset|submit|dirty|status
  wizard <name> valid <step> [true|false]
  toast <severity> <title ...>    queue a notification
  toasts                          list visible notifications
  dismiss <id>
  signin <email> [password]
  signout
  theme light|dark
  checkout <card> <MM/YY> <cvc> <amount-cents> [plan]
  cancel                          abandon the pending checkout
  wait <duration>                 let timers run, e.g. wait 2s
  snapshot                        print the session snapshot
  quit
`

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Simulator drives a controller from text commands, one per line.
type Simulator struct {
	ctl      *toolshed.Controller
	out      io.Writer
	profile  termenv.Profile
	render   func(string) (string, error)
	password func() (string, error)
	sleep    Sleeper
	after    func(context.Context) error
	prompt   bool
	shown    map[string]bool
}

type SimulatorOption func(*Simulator)

// WithProfile sets the colour profile of toasts.
func WithProfile(p termenv.Profile) SimulatorOption {
	return func(s *Simulator) {
		s.profile = p
	}
}

// WithRenderer sets the markdown renderer used by the tool command.
func WithRenderer(render func(string) (string, error)) SimulatorOption {
	return func(s *Simulator) {
		s.render = render
	}
}

// WithPasswordReader is used by signin when the password is omitted.
func WithPasswordReader(read func() (string, error)) SimulatorOption {
	return func(s *Simulator) {
		s.password = read
	}
}

// WithSleeper replaces the wall-clock wait.
func WithSleeper(sleep Sleeper) SimulatorOption {
	return func(s *Simulator) {
		s.sleep = sleep
	}
}

// WithAfterCommand runs fn after every executed command, e.g. to persist
// the session.
func WithAfterCommand(fn func(context.Context) error) SimulatorOption {
	return func(s *Simulator) {
		s.after = fn
	}
}

// WithPrompt prints a prompt before each command.
func WithPrompt(enabled bool) SimulatorOption {
	return func(s *Simulator) {
		s.prompt = enabled
	}
}

func NewSimulator(ctl *toolshed.Controller, out io.Writer, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		ctl:     ctl,
		out:     out,
		profile: termenv.Ascii,
		render:  func(md string) (string, error) { return md, nil },
		sleep:   sleepContext,
		shown:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes commands from in until EOF, quit or ctx is done.
// Command errors are printed and do not stop the loop.
func (s *Simulator) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024), MaxLineSize*2)
	for {
		if s.prompt {
			fmt.Fprintf(s.out, "%s> ", s.ctl.Screen())
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := SanitizeLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		quit, err := s.Exec(ctx, line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if s.after != nil {
			if err := s.after(ctx); err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
		s.flushToasts()
		if quit {
			return nil
		}
	}
}

// flushToasts prints notifications that appeared since the last command.
func (s *Simulator) flushToasts() {
	visible := make(map[string]bool)
	for _, n := range s.ctl.Notifications() {
		visible[n.ID] = true
		if !s.shown[n.ID] {
			fmt.Fprintln(s.out, tui.Toast(s.profile, n))
		}
	}
	s.shown = visible
}

// Exec runs a single command line.
func (s *Simulator) Exec(ctx context.Context, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		names := make([]string, 0)
		for _, sc := range domain.Screens() {
			names = append(names, string(sc))
		}
		fmt.Fprintf(s.out, helpText, strings.Join(names, ", "))
		return false, nil
	case "go":
		return false, s.navigate(args)
	case "where":
		s.where()
		return false, nil
	case "tools":
		return false, s.tools(ctx, strings.Join(args, " "))
	case "tool":
		return false, s.tool(ctx, args)
	case "compare":
		return false, s.compare(ctx, args)
	case "wizards":
		fmt.Fprintln(s.out, strings.Join(s.ctl.Wizards(), "\n"))
		return false, nil
	case "wizard":
		return false, s.wizard(args)
	case "toast":
		if len(args) < 2 {
			return false, fmt.Errorf("%w: toast <severity> <title>", ErrUsage)
		}
		_, err := s.ctl.Notify(domain.NotificationRequest{
			Severity: domain.Severity(strings.ToLower(args[0])),
			Title:    strings.Join(args[1:], " "),
		})
		return false, err
	case "toasts":
		for _, n := range s.ctl.Notifications() {
			fmt.Fprintf(s.out, "%s  %s\n", n.ID, tui.Toast(s.profile, n))
		}
		return false, nil
	case "dismiss":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: dismiss <id>", ErrUsage)
		}
		if !s.ctl.Dismiss(args[0]) {
			return false, fmt.Errorf("no notification %q", args[0])
		}
		return false, nil
	case "signin":
		return false, s.signIn(ctx, args)
	case "signout":
		return false, s.ctl.SignOut()
	case "theme":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: theme light|dark", ErrUsage)
		}
		return false, s.ctl.SetTheme(domain.Theme(strings.ToLower(args[0])))
	case "checkout":
		return false, s.checkout(ctx, args)
	case "cancel":
		if !s.ctl.CancelCheckout() {
			return false, errors.New("no pending checkout")
		}
		fmt.Fprintln(s.out, "checkout cancelled")
		return false, nil
	case "wait":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: wait <duration>", ErrUsage)
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return false, err
		}
		return false, s.sleep(ctx, d)
	case "snapshot":
		data, err := json.MarshalIndent(s.ctl.Snapshot(), "", "  ")
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, string(data))
		return false, nil
	}
	return false, fmt.Errorf("unknown command %q (try help)", cmd)
}

func (s *Simulator) navigate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: go <screen> [key=value ...]", ErrUsage)
	}
	var params domain.Params
	for _, kv := range args[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: param %q is not key=value", ErrUsage, kv)
		}
		if params == nil {
			params = make(domain.Params)
		}
		params[key] = value
	}
	if err := s.ctl.NavigateTo(args[0], params); err != nil {
		return err
	}
	s.where()
	return nil
}

func (s *Simulator) where() {
	route := s.ctl.Current()
	params := domain.RouteParams(route)
	if len(params) == 0 {
		fmt.Fprintf(s.out, "@ %s\n", route.Screen())
		return
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	fmt.Fprintf(s.out, "@ %s %s\n", route.Screen(), strings.Join(parts, " "))
}

func (s *Simulator) tools(ctx context.Context, text string) error {
	tools, err := catalog.Search(ctx, s.ctl.Catalog(), catalog.Query{Text: text})
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		fmt.Fprintln(s.out, "no tools found")
		return nil
	}
	for _, t := range tools {
		fmt.Fprintf(s.out, "%-18s %-20s %-13s %.1f  %s\n", t.ID, t.Name, t.Category, t.Rating, t.Label())
	}
	return nil
}

func (s *Simulator) tool(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: tool <id>", ErrUsage)
	}
	t, err := s.ctl.Catalog().Get(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := s.render(tui.ToolMarkdown(t))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, strings.TrimRight(out, "\n"))
	return nil
}

func (s *Simulator) compare(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: compare add|rm <id> | clear | show", ErrUsage)
	}
	switch args[0] {
	case "add", "rm":
		if len(args) != 2 {
			return fmt.Errorf("%w: compare %s <id>", ErrUsage, args[0])
		}
		if args[0] == "add" {
			return s.ctl.AddToCompare(ctx, args[1])
		}
		if !s.ctl.RemoveFromCompare(args[1]) {
			return fmt.Errorf("%q is not in the comparison", args[1])
		}
		return nil
	case "clear":
		return s.ctl.ClearCompare()
	case "show":
		fmt.Fprintln(s.out, tui.CompareTable(s.ctl.CompareItems()))
		if !s.ctl.CanCompare() {
			fmt.Fprintln(s.out, "select at least two tools to compare")
		}
		return nil
	}
	return fmt.Errorf("%w: unknown compare action %q", ErrUsage, args[0])
}

func (s *Simulator) wizard(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: wizard <name> <action>", ErrUsage)
	}
	name, action := args[0], args[1]

	var err error
	switch action {
	case "next":
		err = s.ctl.AdvanceWizard(name)
	case "back":
		err = s.ctl.RetreatWizard(name)
	case "reset":
		err = s.ctl.ResetWizard(name)
	case "submit":
		err = s.ctl.SubmitWizard(name)
	case "dirty":
		err = s.ctl.MarkWizardDirty(name)
	case "status":
	case "valid":
		if len(args) < 3 {
			return fmt.Errorf("%w: wizard <name> valid <step> [true|false]", ErrUsage)
		}
		step, perr := strconv.Atoi(args[2])
		if perr != nil {
			return fmt.Errorf("%w: step must be a number", ErrUsage)
		}
		valid := true
		if len(args) > 3 {
			if valid, perr = strconv.ParseBool(args[3]); perr != nil {
				return fmt.Errorf("%w: validity must be true or false", ErrUsage)
			}
		}
		err = s.ctl.SetWizardStepValid(name, step, valid)
	default:
		return fmt.Errorf("%w: unknown wizard action %q", ErrUsage, action)
	}
	if err != nil {
		return err
	}

	st, err := s.ctl.WizardStatus(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: step %d/%d valid=%v dirty=%v\n", name, st.Step, st.Steps, st.Valid, st.Dirty)
	if action == "submit" || action == "next" {
		s.where()
	}
	return nil
}

func (s *Simulator) signIn(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: signin <email> [password]", ErrUsage)
	}
	password := ""
	if len(args) == 2 {
		password = args[1]
	} else if s.password != nil {
		var err error
		if password, err = s.password(); err != nil {
			return err
		}
	}
	if err := s.ctl.SignIn(ctx, args[0], password); err != nil {
		return err
	}
	s.where()
	return nil
}

func (s *Simulator) checkout(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return fmt.Errorf("%w: checkout <card> <MM/YY> <cvc> <amount-cents> [plan]", ErrUsage)
	}
	amount, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: amount must be in cents", ErrUsage)
	}
	req := domain.ChargeRequest{
		CardNumber:  args[0],
		Expiry:      args[1],
		CVC:         args[2],
		AmountCents: amount,
	}
	if len(args) == 5 {
		req.Plan = args[4]
	}
	if err := s.ctl.Checkout(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "payment processing...")
	return nil
}
