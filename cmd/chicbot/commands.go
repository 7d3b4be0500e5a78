package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chicbot/chicbot/internal/catalog"
	"github.com/chicbot/chicbot/internal/config"
	"github.com/chicbot/chicbot/internal/storage"
)

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import a product catalog CSV into storage",
	Long: `Import a product catalog CSV into storage, replacing the previous
catalog. The server loads the new catalog on next start.

Example:
  chicbot ingest --csv ./catalog.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		csvPath, _ := cmd.Flags().GetString("csv")
		if csvPath == "" {
			return fmt.Errorf("--csv is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		products, err := catalog.LoadCSV(csvPath)
		if err != nil {
			return fmt.Errorf("reading catalog: %w", err)
		}
		if len(products) == 0 {
			return fmt.Errorf("no products found in %s", csvPath)
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if err := store.ImportProducts(products); err != nil {
			return fmt.Errorf("importing products: %w", err)
		}

		printSuccess("Imported %d products from %s", len(products), csvPath)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("csv", "", "path to the catalog CSV file")
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the running assistant",
	Long: `Send a message to the running assistant in any supported language
(en, fr, ar, tn_latn). Pass --session to continue a conversation.

Examples:
  chicbot chat "show me black jackets"
  chicbot chat --session s1 "nakhou fil ahmar"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		session, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/chat", map[string]any{
			"message":    message,
			"session_id": session,
		})
		if err != nil {
			return err
		}

		var reply struct {
			Response string `json:"response"`
			Products []struct {
				Name  string   `json:"name"`
				Color string   `json:"color"`
				Price *float64 `json:"price"`
				URL   string   `json:"url"`
			} `json:"products"`
			Metadata struct {
				SessionID        string `json:"session_id"`
				Status           string `json:"status"`
				DetectedLanguage string `json:"detected_language"`
			} `json:"metadata"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		fmt.Println(reply.Response)
		for _, p := range reply.Products {
			line := "  " + colorize(colorBold, p.Name)
			if p.Color != "" {
				line += " (" + p.Color + ")"
			}
			if p.Price != nil {
				line += fmt.Sprintf(" £%.2f", *p.Price)
			}
			fmt.Println(line)
			if p.URL != "" {
				fmt.Printf("    %s\n", colorize(colorCyan, p.URL))
			}
		}
		printStatus("Session", "%s (%s, %s)",
			reply.Metadata.SessionID, reply.Metadata.DetectedLanguage, reply.Metadata.Status)
		return nil
	},
}

func init() {
	chatCmd.Flags().String("session", "", "session id to continue a conversation")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the product catalog directly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")
		sortBy, _ := cmd.Flags().GetString("sort")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/api/products/search?q=%s&limit=%d", url.QueryEscape(query), limit)
		if sortBy != "" {
			path += "&sort=" + url.QueryEscape(sortBy)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var body struct {
			Products []struct {
				SKU   string   `json:"sku"`
				Name  string   `json:"name"`
				Color string   `json:"color"`
				Price *float64 `json:"price"`
			} `json:"products"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if len(body.Products) == 0 {
			fmt.Println("No products found.")
			return nil
		}
		for _, p := range body.Products {
			price := "—"
			if p.Price != nil {
				price = fmt.Sprintf("£%.2f", *p.Price)
			}
			fmt.Printf("%s  %s (%s) %s\n",
				colorize(colorCyan, p.SKU), colorize(colorBold, p.Name), p.Color, price)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 5, "maximum number of results")
	searchCmd.Flags().String("sort", "", "sort order: relevance, price_asc, price_desc, newest")
}

// --- interactions ---

var interactionsCmd = &cobra.Command{
	Use:   "interactions",
	Short: "List recent chat interactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/interactions?limit=%d", limit))
		if err != nil {
			return err
		}

		var body struct {
			Interactions []struct {
				ID               string `json:"id"`
				CreatedAt        string `json:"created_at"`
				OriginalQuery    string `json:"original_query"`
				DetectedLanguage string `json:"detected_language"`
				Status           string `json:"status"`
			} `json:"interactions"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if len(body.Interactions) == 0 {
			fmt.Println("No interactions found.")
			return nil
		}
		for _, ix := range body.Interactions {
			query := ix.OriginalQuery
			if len(query) > 80 {
				query = query[:80] + "..."
			}
			fmt.Printf("%s  %s  [%s/%s]  %s\n",
				colorize(colorCyan, shortID(ix.ID)),
				ix.CreatedAt,
				ix.DetectedLanguage,
				ix.Status,
				query,
			)
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	interactionsCmd.Flags().Int("limit", 20, "maximum number of interactions to list")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
