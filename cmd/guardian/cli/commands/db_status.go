package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/anchore/clio"
	"github.com/guardian-sec/guardian/cmd/guardian/cli/options"
	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/internal/log"
)

type dbStatusOptions struct {
	Output string           `yaml:"output" json:"output" mapstructure:"output"`
	DB     options.Database `yaml:"db" json:"db" mapstructure:"db"`
}

var _ clio.FlagAdder = (*dbStatusOptions)(nil)

func (d *dbStatusOptions) AddFlags(flags clio.FlagSet) {
	flags.StringVarP(&d.Output, "output", "o", "format to display results (available=[text, json])")
}

type dbStatus struct {
	Path          string          `json:"path"`
	SchemaVersion string          `json:"schemaVersion"`
	Built         *time.Time      `json:"built,omitempty"`
	VRTRelease    *time.Time      `json:"vrtRelease,omitempty"`
	Sources       []dbSource      `json:"sources"`
	Tables        []v1.TableCount `json:"tables"`
	Err           error           `json:"-"`
}

type dbSource struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Version    string    `json:"version,omitempty"`
	Digest     string    `json:"digest"`
	ImportedAt time.Time `json:"importedAt"`
}

func (s dbStatus) status() string {
	if s.Err != nil {
		return "invalid"
	}
	return "valid"
}

func (s dbStatus) MarshalJSON() ([]byte, error) {
	type alias dbStatus
	errStr := ""
	if s.Err != nil {
		errStr = s.Err.Error()
	}
	return json.Marshal(&struct {
		alias
		Error string `json:"error"`
	}{
		alias: alias(s),
		Error: errStr,
	})
}

func DBStatus(app clio.Application) *cobra.Command {
	opts := &dbStatusOptions{
		Output: textOutputFormat,
		DB:     options.DefaultDatabase(app.ID()),
	}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Display database status, import sources and table sizes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDBStatus(*opts)
		},
	}

	return app.SetupCommand(cmd, opts)
}

func runDBStatus(opts dbStatusOptions) error {
	status := readDBStatus(opts.DB.ToStoreConfig())

	if err := presentDBStatus(opts.Output, os.Stdout, status, time.Now()); err != nil {
		return fmt.Errorf("failed to present db status information: %+v", err)
	}

	return status.Err
}

func readDBStatus(cfg v1.Config) dbStatus {
	status := dbStatus{
		Path:          cfg.DBFilePath(),
		SchemaVersion: v1.SchemaVersion.String(),
	}

	reader, err := v1.NewReader(cfg)
	if err != nil {
		status.Err = err
		return status
	}
	defer log.CloseAndLogError(reader, status.Path)

	meta, err := reader.GetDBMetadata()
	if err != nil {
		status.Err = fmt.Errorf("no import recorded: %w", err)
		return status
	}
	written := meta.SchemaVersion()
	if !v1.SchemaVersion.Compatible(written) {
		status.Err = fmt.Errorf("unsupported schema %s (this build supports %s)", written, v1.SchemaVersion)
	}
	status.SchemaVersion = written.String()
	status.Built = meta.BuildTimestamp
	status.VRTRelease = meta.VrtReleaseDate

	sources, err := reader.AllImportSources()
	if err != nil {
		status.Err = multierror.Append(status.Err, err)
		return status
	}
	for _, src := range sources {
		s := dbSource{
			Name:       src.Name,
			Path:       src.Path,
			Digest:     src.Digest,
			ImportedAt: src.ImportedAt,
		}
		if src.Version != nil {
			s.Version = *src.Version
		}
		status.Sources = append(status.Sources, s)
	}

	status.Tables, err = reader.TableCounts()
	if err != nil {
		status.Err = multierror.Append(status.Err, err)
	}
	return status
}

func presentDBStatus(format string, writer io.Writer, status dbStatus, now time.Time) error {
	switch format {
	case textOutputFormat:
		built := "never"
		if status.Built != nil {
			built = fmt.Sprintf("%s (%s)", status.Built.UTC().Format(time.RFC3339), humanize.RelTime(*status.Built, now, "ago", "from now"))
		}
		fmt.Fprintln(writer, "Path:     ", status.Path)
		fmt.Fprintln(writer, "Schema:   ", status.SchemaVersion)
		fmt.Fprintln(writer, "Built:    ", built)
		if status.VRTRelease != nil {
			fmt.Fprintln(writer, "VRT:      ", status.VRTRelease.UTC().Format(time.DateOnly))
		}
		fmt.Fprintln(writer, "Status:   ", status.status())

		if len(status.Sources) > 0 {
			fmt.Fprintln(writer)
			table := newTable(writer, []string{"Source", "Path", "Version", "Digest", "Imported"})
			for _, s := range status.Sources {
				table.Append([]string{s.Name, s.Path, s.Version, s.Digest, humanize.RelTime(s.ImportedAt, now, "ago", "from now")})
			}
			table.Render()
		}

		if len(status.Tables) > 0 {
			fmt.Fprintln(writer)
			table := newTable(writer, []string{"Table", "Rows"})
			for _, t := range status.Tables {
				table.Append([]string{t.Table, strconv.FormatInt(t.Count, 10)})
			}
			table.Render()
		}
	case jsonOutputFormat:
		enc := json.NewEncoder(writer)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", " ")
		if err := enc.Encode(&status); err != nil {
			return fmt.Errorf("failed to db status information: %+v", err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	return nil
}
