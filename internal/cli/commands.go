package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/innovo-consulting/funding-console/config"
	"github.com/innovo-consulting/funding-console/internal/auth/view"
	"github.com/innovo-consulting/funding-console/internal/bootstrap"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	programsservice "github.com/innovo-consulting/funding-console/internal/programs/service"
	programsview "github.com/innovo-consulting/funding-console/internal/programs/view"
)

type rootOptions struct {
	verbose bool
	cfg     *config.Config
}

// NewRootCmd builds the `console` command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "console",
		Short:         "Innovo funding programs console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := "warn"
			if opts.verbose || cmd.Name() == "serve" {
				level = cfg.App.LogLevel
			}
			_, err = logging.Init(cfg.App.Environment, level)
			return err
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at LOG_LEVEL instead of warn")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newLoginCmd(opts, view.ModeLogin))
	root.AddCommand(newLoginCmd(opts, view.ModeSignup))
	root.AddCommand(newLogoutCmd(opts))
	root.AddCommand(newWhoamiCmd(opts))
	root.AddCommand(newProgramsCmd(opts))
	root.AddCommand(newTemplatesCmd(opts))
	return root
}

func (o *rootOptions) app(cmd *cobra.Command) (*App, error) {
	return NewApp(cmd.Context(), o.cfg, cmd.OutOrStdout())
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Serve(cmd.Context(), opts.cfg)
		},
	}
}

func newLoginCmd(opts *rootOptions, mode view.Mode) *cobra.Command {
	var email, password string

	use, short := "login", "Log in and store the access token"
	if mode == view.ModeSignup {
		use, short = "register", "Create an account"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}
			form := view.NewLoginForm(mode)
			form.Email, form.Password = email, password

			switch form.Submit(cmd.Context(), app.auth(), app.session) {
			case view.OutcomeAuthenticated:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", email)
				return nil
			case view.OutcomeRegistered:
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), form.Success)
				return nil
			}
			return errors.New(form.Error)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (@innovo-consulting.de or @aiio.de)")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}
			if err := app.session.Logout(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show whether a token is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !app.session.IsAuthenticated() {
				_, _ = fmt.Fprintln(w, "not logged in")
				return nil
			}
			_, _ = fmt.Fprintf(w, "logged in (token stored in %s)\n", opts.cfg.Session.TokenFile)
			return nil
		},
	}
}

func newProgramsCmd(opts *rootOptions) *cobra.Command {
	programs := &cobra.Command{Use: "programs", Short: "Funding programs"}
	programs.AddCommand(newProgramsListCmd(opts), newProgramsCreateCmd(opts))
	return programs
}

func newProgramsListCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List funding programs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}
			if err := app.requireSession(); err != nil {
				return err
			}
			items, err := app.programs().List(cmd.Context())
			if err != nil {
				return translate(err)
			}
			return printPrograms(cmd.OutOrStdout(), format, items)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(FormatTable), "output format: table|json|yaml")
	return cmd
}

func printPrograms(w io.Writer, format Format, items []domain.FundingProgram) error {
	if format == FormatTable && len(items) == 0 {
		_, err := fmt.Fprintln(w, "No funding programs yet.")
		return err
	}
	rows := make([]Row, 0, len(items))
	for _, p := range items {
		rows = append(rows, Row{strconv.Itoa(p.ID), p.Title, string(p.TemplateSource), p.TemplateRef})
	}
	return Print(w, format, items, Row{"ID", "TITLE", "SOURCE", "TEMPLATE"}, rows)
}

func newProgramsCreateCmd(opts *rootOptions) *cobra.Command {
	var title, source, ref string
	var guidelines []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a funding program and upload its guidelines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}
			if err := app.requireSession(); err != nil {
				return err
			}
			return app.createProgram(cmd.Context(), title, domain.TemplateSource(source), ref, guidelines)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "program title")
	cmd.Flags().StringVar(&source, "source", "", "template source: system|user")
	cmd.Flags().StringVar(&ref, "template", "", "template id within the source")
	cmd.Flags().StringSliceVar(&guidelines, "guideline", nil, "guideline PDF (repeatable)")
	return cmd
}

func (a *App) createProgram(ctx context.Context, title string, source domain.TemplateSource, ref string, paths []string) error {
	svc := a.programs()

	form := &programsview.CreateForm{Title: title}
	form.SelectSource(source)
	form.Ref = ref

	for _, p := range paths {
		g, err := programsservice.ReadGuideline(p)
		if err != nil {
			return err
		}
		form.Guidelines = append(form.Guidelines, g)
	}

	templates, err := svc.Templates(ctx)
	if err != nil {
		return translate(err)
	}

	var createErr error
	res, outcome := form.Submit(ctx, creatorFunc(func(ctx context.Context, req domain.CreateProgramRequest, g []domain.Guideline) (programsservice.CreateResult, error) {
		res, err := svc.Create(ctx, req, g)
		createErr = err
		return res, err
	}), templates)

	if outcome != programsview.OutcomeCreated {
		if createErr != nil {
			if translated := translate(createErr); errors.Is(translated, ErrSessionExpired) {
				return translated
			}
		}
		if errors.Is(createErr, programsservice.ErrUploadFailed) && !res.RolledBack {
			return fmt.Errorf("%s: program %d was created without guidelines, do not create it again", form.Error, res.ProgramID)
		}
		return errors.New(form.Error)
	}

	_, _ = fmt.Fprintf(a.out, "created funding program %d", res.ProgramID)
	if n := len(res.Uploaded); n > 0 {
		_, _ = fmt.Fprintf(a.out, " with %d guideline(s)", n)
	}
	_, _ = fmt.Fprintln(a.out)
	return nil
}

type creatorFunc func(ctx context.Context, req domain.CreateProgramRequest, guidelines []domain.Guideline) (programsservice.CreateResult, error)

func (f creatorFunc) Create(ctx context.Context, req domain.CreateProgramRequest, guidelines []domain.Guideline) (programsservice.CreateResult, error) {
	return f(ctx, req, guidelines)
}

func newTemplatesCmd(opts *rootOptions) *cobra.Command {
	templates := &cobra.Command{Use: "templates", Short: "Program templates"}

	var output string
	list := &cobra.Command{
		Use:   "list",
		Short: "List system and user templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}
			if err := app.requireSession(); err != nil {
				return err
			}
			tl, err := app.programs().Templates(cmd.Context())
			if err != nil {
				return translate(err)
			}
			var rows []Row
			for _, src := range []domain.TemplateSource{domain.SourceSystem, domain.SourceUser} {
				for _, t := range tl.Collection(src) {
					rows = append(rows, Row{string(src), t.ID, t.Name})
				}
			}
			return Print(cmd.OutOrStdout(), format, tl, Row{"SOURCE", "ID", "NAME"}, rows)
		},
	}
	list.Flags().StringVarP(&output, "output", "o", string(FormatTable), "output format: table|json|yaml")
	templates.AddCommand(list)
	return templates
}
