package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/restaurant-ops-backend/config"
	"github.com/ikkim/restaurant-ops-backend/internal/app/repository"
	"github.com/ikkim/restaurant-ops-backend/internal/app/service"
	"github.com/ikkim/restaurant-ops-backend/internal/db"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/redis"
	"github.com/ikkim/restaurant-ops-backend/pkg/secure"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

// Columns of the import sheet. The first row is a header.
const (
	colName = iota
	colPhone
	colAddress
	colConcept
	colPlan
	colChannelID
	colChannelSecret
	colAccessToken
	importColumns
)

var importFlags struct {
	owner          uint
	yes            bool
	webhookBaseURL string
}

var importCmd = &cobra.Command{
	Use:   "import <xlsx_file>",
	Short: "Register stores listed in a spreadsheet",
	Long: `Register every valid row of the first sheet as a store of --owner.

Columns: name, phone, address, concept, plan, LINE channel ID,
LINE channel secret, LINE access token.

Each row gets an idempotency key derived from the owner and store name,
so running the same file twice does not create duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().UintVarP(&importFlags.owner, "owner", "o", 1, "Merchant user ID that owns the stores")
	importCmd.Flags().BoolVarP(&importFlags.yes, "yes", "y", false, "Skip the confirmation prompt")
	importCmd.Flags().StringVar(&importFlags.webhookBaseURL, "webhook-base", "", "Webhook base URL (defaults to WIZARD_WEBHOOK_BASE_URL)")
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	webhookBase := importFlags.webhookBaseURL
	if webhookBase == "" {
		webhookBase = cfg.Wizard.WebhookBaseURL
	}

	fmt.Fprintf(out, "Reading XLSX file: %s\n", args[0])
	f, err := excelize.OpenFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	requests, skipped, err := readStores(f, importFlags.owner, webhookBase)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Stores to import: %d (skipped rows: %d)\n", len(requests), skipped)
	if len(requests) == 0 {
		return nil
	}

	if !importFlags.yes && !confirm(cmd.InOrStdin(), out) {
		fmt.Fprintln(out, "Import cancelled.")
		return nil
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sealer, err := secure.NewSealer(cfg.Security.SealingKey)
	if err != nil {
		return err
	}
	stores := service.NewStoreService(db.GetDB(), repository.NewStoreRepository(db.GetDB()), redis.NewMemoryClaims(), sealer)

	created, failed := 0, 0
	for _, req := range requests {
		store, err := stores.RegisterStore(context.Background(), importFlags.owner, req)
		if err != nil {
			failed++
			if !errors.Is(err, service.ErrDuplicateStoreName) {
				fmt.Fprintf(out, "  %s: %v\n", req.BasicInfo.Name, err)
			}
			continue
		}
		created++
		fmt.Fprintf(out, "  %s -> %s\n", store.Name, store.PublicID)
	}

	fmt.Fprintf(out, "Import completed: %d registered, %d not registered\n", created, failed)
	return nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Do you want to proceed with the import? (yes/no): ")
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

// readStores turns the rows of the first sheet into registration requests.
// Rows that would fail wizard validation or repeat an earlier name are skipped.
func readStores(f *excelize.File, ownerID uint, webhookBase string) ([]wizard.SubmissionRequest, int, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}

	steps := wizard.DefaultSteps()
	var requests []wizard.SubmissionRequest
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}
		for len(row) < importColumns {
			row = append(row, "")
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}

		name := row[colName]
		if !isValidStoreName(name) || row[colPhone] == "" || row[colAddress] == "" {
			skipped++
			continue
		}
		if seen[strings.ToLower(name)] {
			skipped++
			continue
		}
		seen[strings.ToLower(name)] = true

		form := wizard.NewFormData()
		form.BasicInfo.Name = name
		form.BasicInfo.Phone = row[colPhone]
		form.BasicInfo.Address = row[colAddress]
		form.BasicInfo.Concept = row[colConcept]
		if plan := wizard.PlanTier(strings.ToLower(row[colPlan])); plan.Valid() {
			form.BasicInfo.Plan = plan
		}
		form.LineSetup.ChannelID = row[colChannelID]
		form.LineSetup.ChannelSecret = row[colChannelSecret]
		form.LineSetup.AccessToken = row[colAccessToken]
		if url, err := wizard.WebhookURL(webhookBase, name); err == nil {
			form.LineSetup.WebhookURL = url
		}
		if len(wizard.ValidateForm(steps, form)) > 0 {
			skipped++
			continue
		}

		requests = append(requests, wizard.SubmissionRequest{
			IdempotencyKey: importKey(ownerID, name),
			BasicInfo:      form.BasicInfo,
			LineSetup:      form.LineSetup,
			GoogleSetup:    form.GoogleSetup,
			AISetup:        form.AISetup,
		})
	}
	return requests, skipped, nil
}

// importKey is stable per owner and name so a re-run replays instead of duplicating.
func importKey(ownerID uint, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("seed:%d:%s", ownerID, strings.ToLower(name)))).String()
}

var (
	numericOnlyPattern = regexp.MustCompile(`^[0-9]+$`)
	symbolOnlyPattern  = regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
)

// isValidStoreName rejects names that are too short or carry no letters.
func isValidStoreName(name string) bool {
	if len([]rune(name)) < 2 {
		return false
	}
	return !numericOnlyPattern.MatchString(name) && !symbolOnlyPattern.MatchString(name)
}
