package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"CatalogAdmin/internal/admin"
	"CatalogAdmin/internal/catalog"
	"CatalogAdmin/pkg/kit"
)

type rootOptions struct {
	api      string
	timeout  time.Duration
	logLevel string

	stdout io.Writer
	stderr io.Writer
	editor admin.DescriptionEditor

	app *admin.App
	log *zap.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "admin",
		Short:         "Manage the product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			o.log = kit.NewLogger("admin", o.logLevel)
			o.app = admin.NewApp(admin.NewClient(o.api, o.timeout), o.log)
			if o.editor == nil {
				ed := admin.EditorFromEnv()
				ed.Stdout, ed.Stderr = o.stderr, o.stderr
				o.editor = ed
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.log != nil {
				_ = o.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&o.api, "api", envOrDefault("CATALOG_API_URL", admin.DefaultBaseURL), "catalog API base URL (env CATALOG_API_URL)")
	pf.DurationVar(&o.timeout, "timeout", admin.DefaultTimeout, "timeout for each API call")
	pf.StringVar(&o.logLevel, "log-level", envOrDefault("LOG_LEVEL", "warn"), "log level (debug|info|warn|error)")

	root.AddCommand(
		newListCommand(o),
		newCreateCommand(o),
		newEditCommand(o),
		newDeleteCommand(o),
	)
	return root
}

func newListCommand(o *rootOptions) *cobra.Command {
	var (
		view   admin.ListView
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, filtered by name and paginated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.render(cmd.Context(), view, output)
		},
	}
	cmd.Flags().StringVar(&view.Search, "search", "", "case-insensitive name filter")
	cmd.Flags().IntVar(&view.Page, "page", 1, "page number")
	cmd.Flags().StringVarP(&output, "output", "o", admin.OutputTable, "output format (table|json|yaml)")
	return cmd
}

func newCreateCommand(o *rootOptions) *cobra.Command {
	var ff formFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			form := admin.Form{Status: catalog.StatusActive}
			closeImage, err := ff.apply(ctx, cmd, &form, o.editor)
			if err != nil {
				return err
			}
			defer closeImage()

			created, err := o.app.Create(ctx, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "created product %d\n", created.ID)
			return admin.WritePage(o.stdout, admin.ListView{Page: 1}.Render(o.app.Cache.State()), admin.OutputTable)
		},
	}
	ff.bind(cmd)
	return cmd
}

func newEditCommand(o *rootOptions) *cobra.Command {
	var ff formFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a product; unset flags keep the current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			form, err := o.app.LoadEdit(ctx, id)
			if err != nil {
				return err
			}
			closeImage, err := ff.apply(ctx, cmd, &form, o.editor)
			if err != nil {
				return err
			}
			defer closeImage()

			saved, err := o.app.Edit(ctx, id, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "updated product %d\n", saved.ID)
			return admin.WritePage(o.stdout, admin.ListView{Page: 1}.Render(o.app.Cache.State()), admin.OutputTable)
		},
	}
	ff.bind(cmd)
	cmd.Flags().BoolVar(&ff.editor, "editor", false, "open the description in $VISUAL/$EDITOR")
	return cmd
}

func newDeleteCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := o.app.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "deleted product %d\n", id)
			return o.render(cmd.Context(), admin.ListView{Page: 1}, admin.OutputTable)
		},
	}
}

func (o *rootOptions) render(ctx context.Context, v admin.ListView, output string) error {
	lp := o.app.List(ctx, v)
	return admin.WritePage(o.stdout, lp, output)
}

// formFlags are the product fields shared by create and edit. Only flags the
// user set are applied, so edit keeps the loaded values for the rest.
type formFlags struct {
	name            string
	description     string
	descriptionFile string
	image           string
	imageURL        string
	price           float64
	status          string
	editor          bool
}

func (ff *formFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ff.name, "name", "", "product name")
	f.Float64Var(&ff.price, "price", 0, "product price")
	f.StringVar(&ff.status, "status", string(catalog.StatusActive), "active|archived")
	f.StringVar(&ff.description, "description", "", "description HTML")
	f.StringVar(&ff.descriptionFile, "description-file", "", "read the description HTML from a file")
	f.StringVar(&ff.image, "image", "", "local image file to upload")
	f.StringVar(&ff.imageURL, "image-url", "", "already hosted image URL")
	cmd.MarkFlagsMutuallyExclusive("description", "description-file")
	cmd.MarkFlagsMutuallyExclusive("image", "image-url")
}

// apply copies the set flags onto form. The returned func closes the opened
// image file, if any.
func (ff *formFlags) apply(ctx context.Context, cmd *cobra.Command, form *admin.Form, editor admin.DescriptionEditor) (func(), error) {
	noop := func() {}
	set := cmd.Flags().Changed

	if set("name") {
		form.Name = ff.name
	}
	if set("price") {
		form.Price = ff.price
	}
	if set("status") {
		st, err := catalog.ParseStatus(ff.status)
		if err != nil {
			return noop, err
		}
		form.Status = st
	}
	if set("description") {
		form.Description = ff.description
	}
	if set("description-file") {
		raw, err := os.ReadFile(ff.descriptionFile)
		if err != nil {
			return noop, fmt.Errorf("read description: %w", err)
		}
		form.Description = string(raw)
	}
	if ff.editor {
		html, err := editor.EditHTML(ctx, form.Description)
		if err != nil {
			return noop, err
		}
		form.Description = html
	}
	if set("image-url") {
		form.ImageURL = ff.imageURL
	}
	if set("image") {
		f, err := os.Open(ff.image)
		if err != nil {
			return noop, fmt.Errorf("open image: %w", err)
		}
		form.Upload = &admin.ImageFile{Name: filepath.Base(ff.image), Body: f}
		return func() { _ = f.Close() }, nil
	}
	return noop, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
