package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/cli/connection"
	"github.com/complitracker/complitracker-go/internal/cli/output"
	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
)

// dashboardView is the landing page summary.
type dashboardView struct {
	User      string                 `json:"user" yaml:"user"`
	Stats     domain.ComplianceStats `json:"stats" yaml:"stats"`
	Risk      *domain.RiskScore      `json:"risk,omitempty" yaml:"risk,omitempty"`
	Upcoming  []domain.Compliance    `json:"upcoming" yaml:"upcoming"`
	RiskError string                 `json:"risk_error,omitempty" yaml:"risk_error,omitempty"`
}

const dashboardDays = 30

// DashboardCommand returns the dashboard command.
func DashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Show compliance status, upcoming deadlines and organization risk",
		Action: protected(domain.RouteDashboard, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
			ctx := c.Context
			tok := s.Token()

			stats, err := remote(ctx, s, spin(rt, "Loading dashboard", func() domain.Result[domain.ComplianceStats] {
				return rt.api.Compliance.Stats(ctx, tok)
			}))
			if err != nil {
				return err
			}
			upcoming, err := remote(ctx, s, rt.api.Compliance.Deadlines(ctx, tok, dashboardDays))
			if err != nil {
				return err
			}

			view := dashboardView{User: s.State().User.Name, Stats: stats, Upcoming: upcoming}
			// Risk scoring is optional on the backend.
			if risk, err := rt.api.Risk.Organization(ctx, tok).Unwrap(); err != nil {
				rt.Logger().Warn("organization risk unavailable", "error", err)
				view.RiskError = domain.MessageOf(err, "risk analysis unavailable")
			} else {
				view.Risk = &risk
			}

			if !rt.printsTable(c) {
				return rt.Print(c, view)
			}
			return printDashboard(c, rt, view)
		}),
	}
}

func printDashboard(c *cli.Context, rt *Runtime, v dashboardView) error {
	fmt.Fprintf(rt.Out, "Welcome, %s\n\n", v.User)
	if err := rt.Print(c, v.Stats); err != nil {
		return err
	}
	if v.Risk != nil {
		fmt.Fprintf(rt.Out, "\nOrganization risk: %.1f (%s)\n", v.Risk.Score, v.Risk.Level)
	} else {
		fmt.Fprintf(rt.Out, "\nOrganization risk: %s\n", v.RiskError)
	}
	fmt.Fprintf(rt.Out, "\nDeadlines in the next %d days:\n", dashboardDays)
	if len(v.Upcoming) == 0 {
		fmt.Fprintln(rt.Out, "  none")
		return nil
	}
	return rt.Print(c, v.Upcoming)
}

// ComplianceCommand returns the compliance subcommand group.
func ComplianceCommand() *cli.Command {
	route := domain.RouteCompliance
	return &cli.Command{
		Name:    "compliance",
		Aliases: []string{"comp"},
		Usage:   "Manage compliance items",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List compliance items",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status"},
					&cli.StringFlag{Name: "area", Usage: "Filter by compliance area ID"},
					&cli.StringFlag{Name: "priority", Usage: "Filter by priority"},
				},
				Action: protected(route, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					f := connection.ComplianceFilter{
						Status:   c.String("status"),
						AreaID:   c.String("area"),
						Priority: c.String("priority"),
					}
					items, err := remote(c.Context, s, rt.api.Compliance.List(c.Context, s.Token(), f))
					if err != nil {
						return err
					}
					if err := rt.Print(c, items); err != nil {
						return err
					}
					rt.Printf(c, "\nTotal: %d items", len(items))
					return nil
				}),
			},
			{
				Name:      "get",
				Usage:     "Show a compliance item",
				ArgsUsage: "ID",
				Action: protectedAt(withArg(route), func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					id, err := idArg(c, "compliance")
					if err != nil {
						return err
					}
					item, err := remote(c.Context, s, rt.api.Compliance.Get(c.Context, s.Token(), id))
					if err != nil {
						return err
					}
					return rt.Print(c, item)
				}),
			},
			{
				Name:  "create",
				Usage: "Create a compliance item",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description"},
					&cli.StringFlag{Name: "area", Usage: "Compliance area ID"},
					&cli.StringFlag{Name: "priority", Usage: "Priority: low, medium, high"},
					&cli.StringFlag{Name: "assignee", Usage: "Assigned user"},
					&cli.StringFlag{Name: "deadline", Usage: "Deadline as YYYY-MM-DD"},
				},
				Action: protected(route, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					in := domain.ComplianceInput{
						Title:       c.String("title"),
						Description: c.String("description"),
						AreaID:      c.String("area"),
						Priority:    c.String("priority"),
						AssignedTo:  c.String("assignee"),
					}
					if d := c.String("deadline"); d != "" {
						t, err := time.ParseInLocation("2006-01-02", d, time.Local)
						if err != nil {
							return domain.ErrValidation.WithDetails("deadline must be YYYY-MM-DD")
						}
						in.Deadline = &t
					}
					if err := in.Validate(); err != nil {
						return err
					}
					item, err := remote(c.Context, s, rt.api.Compliance.Create(c.Context, s.Token(), in))
					if err != nil {
						return err
					}
					if !rt.printsTable(c) {
						return rt.Print(c, item)
					}
					rt.Printf(c, "Compliance item %d created", item.ID)
					return nil
				}),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a compliance item",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
				},
				Action: protectedAt(withArg(route), func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					id, err := idArg(c, "compliance")
					if err != nil {
						return err
					}
					if !c.Bool("force") {
						answer, err := rt.Prompt(c.Context, fmt.Sprintf("Delete compliance item %d? [y/N]", id))
						if err != nil {
							return err
						}
						if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
							rt.Printf(c, "Aborted")
							return nil
						}
					}
					if _, err := remote(c.Context, s, rt.api.Compliance.Delete(c.Context, s.Token(), id)); err != nil {
						return err
					}
					rt.Printf(c, "Compliance item %d deleted", id)
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "Show compliance counts by status",
				Action: protected(route, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					stats, err := remote(c.Context, s, rt.api.Compliance.Stats(c.Context, s.Token()))
					if err != nil {
						return err
					}
					return rt.Print(c, stats)
				}),
			},
			{
				Name:  "deadlines",
				Usage: "List items due soon",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: dashboardDays, Usage: "Look-ahead window in days"},
				},
				Action: protected(route, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					days := c.Int("days")
					if days <= 0 {
						return domain.ErrValidation.WithDetails("days must be positive")
					}
					items, err := remote(c.Context, s, rt.api.Compliance.Deadlines(c.Context, s.Token(), days))
					if err != nil {
						return err
					}
					return rt.Print(c, items)
				}),
			},
		},
	}
}

// DocumentCommand returns the document subcommand group.
func DocumentCommand() *cli.Command {
	route := domain.RouteDocuments
	return &cli.Command{
		Name:    "document",
		Aliases: []string{"doc"},
		Usage:   "Manage compliance documents",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List documents",
				Action: protected(route, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					docs, err := remote(c.Context, s, rt.api.Documents.List(c.Context, s.Token()))
					if err != nil {
						return err
					}
					return rt.Print(c, docs)
				}),
			},
			{
				Name:      "get",
				Usage:     "Show document metadata",
				ArgsUsage: "ID",
				Action: protectedAt(withArg(route), func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					id, err := idArg(c, "document")
					if err != nil {
						return err
					}
					doc, err := remote(c.Context, s, rt.api.Documents.Get(c.Context, s.Token(), id))
					if err != nil {
						return err
					}
					return rt.Print(c, doc)
				}),
			},
			{
				Name:      "versions",
				Usage:     "Show a document's version history",
				ArgsUsage: "ID",
				Action: protectedAt(withArg(route), func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					id, err := idArg(c, "document")
					if err != nil {
						return err
					}
					versions, err := remote(c.Context, s, rt.api.Documents.Versions(c.Context, s.Token(), id))
					if err != nil {
						return err
					}
					return rt.Print(c, versions)
				}),
			},
			{
				Name:      "upload",
				Usage:     "Upload a document",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Document title (default: file name)"},
					&cli.Int64Flag{Name: "compliance-id", Usage: "Attach to a compliance item"},
				},
				Action: protected(route, documentUpload),
			},
		},
	}
}

func documentUpload(c *cli.Context, rt *Runtime, s *service.Controller) error {
	path := c.Args().First()
	if path == "" {
		return domain.ErrMissingArgument.WithDetails("file")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat upload: %w", err)
	}

	name := filepath.Base(path)
	meta := map[string]string{"title": c.String("title")}
	if meta["title"] == "" {
		meta["title"] = name
	}
	if id := c.Int64("compliance-id"); id > 0 {
		meta["complianceId"] = strconv.FormatInt(id, 10)
	}

	var content io.Reader = f
	if rt.interactive() {
		bar := output.NewProgressBar(rt.Err, name, info.Size())
		defer bar.Finish()
		content = bar.Reader(f)
	}

	doc, err := remote(c.Context, s, rt.api.Documents.Upload(c.Context, s.Token(), name, content, meta))
	if err != nil {
		return err
	}
	if !rt.printsTable(c) {
		return rt.Print(c, doc)
	}
	rt.Printf(c, "Uploaded %s (%s) as document %d", name, output.FormatBytes(info.Size()), doc.ID)
	return nil
}

// RiskCommand returns the risk subcommand group.
func RiskCommand() *cli.Command {
	route := domain.RouteRisk
	return &cli.Command{
		Name:  "risk",
		Usage: "Show AI risk assessments",
		Subcommands: []*cli.Command{
			{
				Name:  "organization",
				Usage: "Show the organization risk score",
				Action: protected(route, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					score, err := remote(c.Context, s, spin(rt, "Scoring", func() domain.Result[domain.RiskScore] {
						return rt.api.Risk.Organization(c.Context, s.Token())
					}))
					if err != nil {
						return err
					}
					return printRisk(c, rt, score)
				}),
			},
			{
				Name:      "item",
				Usage:     "Show the risk score of a compliance item",
				ArgsUsage: "COMPLIANCE_ID",
				Action: protectedAt(withArg(route), func(c *cli.Context, rt *Runtime, s *service.Controller) error {
					id, err := idArg(c, "compliance")
					if err != nil {
						return err
					}
					score, err := remote(c.Context, s, spin(rt, "Scoring", func() domain.Result[domain.RiskScore] {
						return rt.api.Risk.Compliance(c.Context, s.Token(), id)
					}))
					if err != nil {
						return err
					}
					return printRisk(c, rt, score)
				}),
			},
		},
	}
}

func printRisk(c *cli.Context, rt *Runtime, score domain.RiskScore) error {
	if err := rt.Print(c, score); err != nil {
		return err
	}
	if rt.printsTable(c) && len(score.Factors) > 0 {
		fmt.Fprintln(rt.Out, "\nFactors:")
		return rt.Print(c, score.Factors)
	}
	return nil
}

// idArg parses the first argument as a positive numeric ID.
func idArg(c *cli.Context, what string) (int64, error) {
	s := c.Args().First()
	if s == "" {
		return 0, domain.ErrMissingArgument.WithDetails(what + " ID")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrValidation.WithDetails(fmt.Sprintf("invalid %s ID %q", what, s))
	}
	return id, nil
}
