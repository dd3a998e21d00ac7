package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"codenest/internal/api"
	"codenest/internal/store"
	"codenest/internal/viewer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	createTitle    string
	createFile     string
	createExpireIn int64
	createMaxViews int64
	createTags     []string
)

// viewCmd opens the interactive viewer directly on one snippet.
var viewCmd = &cobra.Command{
	Use:   "view [snippet-id]",
	Short: "Open a snippet in the interactive viewer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(args[0])
	},
}

// createCmd publishes a snippet from a file or stdin without entering the
// interactive UI.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a snippet from a file or stdin",
	Long: `Publishes a code snippet and prints its id.

The snippet body comes from --file, or from stdin when --file is omitted.
At most one of --expire-in and --max-views may be set; with neither, the
snippet never expires.`,
	RunE: runCreate,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the most recent public snippets",
	RunE:  runLatest,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List snippets viewed from this terminal",
	RunE:  runHistory,
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Snippet title")
	createCmd.Flags().StringVarP(&createFile, "file", "f", "", "File holding the snippet body (default: stdin)")
	createCmd.Flags().Int64Var(&createExpireIn, "expire-in", 0, "Expire after this many seconds")
	createCmd.Flags().Int64Var(&createMaxViews, "max-views", 0, "Expire after this many views")
	createCmd.Flags().StringSliceVar(&createTags, "tags", nil, "Tags for the snippet")
}

func runCreate(cmd *cobra.Command, args []string) error {
	if createExpireIn > 0 && createMaxViews > 0 {
		return fmt.Errorf("--expire-in and --max-views are mutually exclusive")
	}

	var content []byte
	var err error
	if createFile != "" {
		content, err = os.ReadFile(createFile)
	} else {
		content, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read snippet body: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("snippet body is empty")
	}

	req := api.CreateSnippetRequest{
		Title:   createTitle,
		Content: string(content),
		Tags:    createTags,
	}
	switch {
	case createExpireIn > 0:
		req.ExpirationType = api.ExpirationTime
		req.ExpirationValue = createExpireIn
	case createMaxViews > 0:
		req.ExpirationType = api.ExpirationViews
		req.ExpirationValue = createMaxViews
	}

	client, err := newClient(loadConfig())
	if err != nil {
		return err
	}

	result, err := client.CreateSnippet(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	logger.Info("Snippet created", zap.String("uuid", result.UUID))
	fmt.Println(result.UUID)
	return nil
}

func runLatest(cmd *cobra.Command, args []string) error {
	client, err := newClient(loadConfig())
	if err != nil {
		return err
	}

	result, err := client.LatestSnippets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load latest snippets: %w", err)
	}

	for idx, snip := range result.Snippets {
		title := snip.Title
		if title == "" {
			title = "(untitled)"
		}
		author := ""
		if idx < len(result.Authors) {
			author = " by " + result.Authors[idx].Name
		}
		left := ""
		switch snip.ExpirationType {
		case api.ExpirationTime:
			left = " [" + viewer.FormatRemaining(snip.RemainingSeconds) + " left]"
		case api.ExpirationViews:
			left = fmt.Sprintf(" [%d views left]", snip.RemainingViews)
		}
		fmt.Printf("%s  %s%s%s\n", snip.UUID, title, author, left)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := historyPath()
	if err != nil {
		return err
	}
	history, err := store.NewHistoryStore(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	entries, err := history.Recent(20)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No snippets viewed yet")
		return nil
	}
	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %s\n", entry.ViewedAt.Local().Format("2006-01-02 15:04"), entry.UUID, title)
	}
	return nil
}
