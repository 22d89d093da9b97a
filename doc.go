/*
Package toolshed is the headless coordination layer of an AI tool discovery product.

It owns the state a discovery front end shuffles between screens: the active
screen, a bounded comparison tray, multi-step wizards, transient toast
notifications and the session context (theme and signed-in user). The tool
catalog, the auth provider and the payment provider are collaborators behind
ports, with stubbed implementations for prototyping.

# Concept

A Controller is created per session. Every mutation goes through it and is
serialized, so hosts (an HTTP server, an MCP agent, a terminal simulator) can
call it from any goroutine. Timers (toast expiry, payment settlement) run on an
injected clock and are cancelled by Close.

# Usage

	ctl, err := toolshed.New()
	if err != nil {
		log.Fatal(err)
	}
	defer ctl.Close()

	ctx := context.Background()
	_ = ctl.NavigateTo("tool-detail", domain.Params{"tool_id": "chatgpt"})
	_ = ctl.AddToCompare(ctx, "chatgpt")
	_ = ctl.AddToCompare(ctx, "claude")

	if ctl.CanCompare() {
		_ = ctl.Navigate(domain.Compare{})
	}

	for _, n := range ctl.Notifications() {
		fmt.Println(n.Severity, n.Title)
	}

Protected screens (dashboard, wallet, submit, admin, moderation) redirect to
the auth screen until SignIn succeeds; admin and moderation also need an
admin user.

State can be persisted with Snapshot and brought back with Restore; see
pkg/session for a manager that does this around every mutation.
*/
package toolshed
