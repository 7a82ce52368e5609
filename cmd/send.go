package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vkblast/vkblast/app"
	"github.com/vkblast/vkblast/config"
	"github.com/vkblast/vkblast/core/events"
	"github.com/vkblast/vkblast/core/model"
	"github.com/vkblast/vkblast/infra/logger"
	"github.com/vkblast/vkblast/pkg/export"
)

var (
	contactsPath string
	message      string
	messageFile  string
	reportPath   string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Import contacts and run a bulk send",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&contactsPath, "contacts", "f", "", "contact sheet (CSV or TSV)")
	sendCmd.Flags().StringVarP(&message, "message", "m", "", "message template")
	sendCmd.Flags().StringVar(&messageFile, "message-file", "", "file containing the message template")
	sendCmd.Flags().StringVar(&reportPath, "report", "", "write per-contact outcomes to this file (.csv or .json)")
	_ = sendCmd.MarkFlagRequired("contacts")
	rootCmd.AddCommand(sendCmd)
}

func loadTemplate() (string, error) {
	if message != "" {
		return message, nil
	}
	if messageFile != "" {
		data, err := os.ReadFile(messageFile)
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return "", fmt.Errorf("either --message or --message-file is required")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	tpl, err := loadTemplate()
	if err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("send-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	n, err := svc.LoadContacts(contactsPath)
	if err != nil {
		return fmt.Errorf("import contacts: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no contacts found in %s", contactsPath)
	}

	svc.Start(ctx)

	// Progress output, one line per settled contact.
	sub := svc.Bus().Subscribe()
	defer svc.Bus().Unsubscribe(sub)
	go func() {
		for e := range sub {
			if ev, ok := e.(events.StateEvent); ok && ev.Reason != "" {
				logg.Warnf("%s: %s (%s)", ev.Label, ev.To, ev.Reason)
			} else if ok {
				logg.Infof("%s: %s", ev.Label, ev.To)
			}
		}
	}()

	sum, err := svc.Orchestrator.SendAll(ctx, svc.Session, tpl)
	if err != nil {
		return err
	}
	fmt.Printf("total=%d sent=%d failed=%d skipped=%d\n", sum.Total, sum.Sent, sum.Failed, sum.Skipped)

	if reportPath != "" {
		if err := writeReport(reportPath, svc.Session.Snapshot()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d sends failed", sum.Failed)
	}
	return nil
}

func writeReport(path string, list []*model.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return export.WriteJSON(f, list)
	}
	return export.WriteCSV(f, list)
}
