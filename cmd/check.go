package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vkblast/vkblast/config"
	"github.com/vkblast/vkblast/core/contacts"
	"github.com/vkblast/vkblast/core/model"
	"github.com/vkblast/vkblast/core/template"
	"github.com/vkblast/vkblast/infra/spreadsheet"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a template and preview a contact import without sending",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&contactsPath, "contacts", "f", "", "contact sheet (CSV or TSV)")
	checkCmd.Flags().StringVarP(&message, "message", "m", "", "message template")
	checkCmd.Flags().StringVar(&messageFile, "message-file", "", "file containing the message template")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var tpl string
	if message != "" || messageFile != "" {
		tpl, err = loadTemplate()
		if err != nil {
			return err
		}
		if err := template.New(cfg.Template).Validate(tpl); err != nil {
			return fmt.Errorf("template: %w", err)
		}
		fmt.Println("template: ok")
	}

	if contactsPath != "" {
		rows, err := spreadsheet.ReadFile(contactsPath, spreadsheet.Options{})
		if err != nil {
			return fmt.Errorf("read contacts: %w", err)
		}
		list := contacts.Normalize(rows)
		resolved := 0
		for _, c := range list {
			if c.Resolved() {
				resolved++
			}
		}
		fmt.Printf("contacts: %d imported, %d resolved, %d without ID\n",
			len(list), resolved, len(list)-resolved)
		for _, c := range list {
			if !c.Resolved() {
				fmt.Printf("  no ID: %s\n", c.Label())
			}
		}
		if tpl != "" {
			previewRenders(cfg, tpl, list)
		}
	}
	return nil
}

// previewRenders prints the rendered text for the first few resolved
// contacts so the operator can eyeball the substitutions before sending.
func previewRenders(cfg *config.Config, tpl string, list []*model.Contact) {
	eng := template.New(cfg.Template)
	shown := 0
	for _, c := range list {
		if shown == 3 {
			break
		}
		if !c.Resolved() {
			continue
		}
		text, err := eng.Render(tpl, c)
		if err != nil {
			fmt.Printf("  render %s: %v\n", c.Label(), err)
			continue
		}
		fmt.Printf("  preview %s: %s\n", c.Label(), text)
		shown++
	}
}
