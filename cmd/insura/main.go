// Команда insura - консольный клиент API страховых полисов.
// Сессия хранится в файле и переживает перезапуск; любой ответ 401
// сбрасывает ее глобально.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/gateway"
	"github.com/frontandrew/insura/internal/pkg/config"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/session"
	"github.com/frontandrew/insura/internal/store"
)

const usage = `Usage: insura <command> [flags]

Auth commands:
  register   -name -email     Register a new account
  login      -email           Log in and persist the session
  whoami                      Show the current user
  logout                      Log out and revoke the token

Policy commands:
  list       [-search -status -page -per-page]   List policies
  get        -id                                 Show one policy
  create     -file <json>                        Create a policy
  update     -id -file <json>                    Update a policy
  delete     -id                                 Delete a policy
  pdf        -id                                 Generate a PDF download link
`

// app - собранные зависимости клиента
type app struct {
	cfg     *config.Config
	logger  logger.Logger
	session *session.Session
	client  *gateway.Client
	store   *store.PolicyStore
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewNoop()
	if os.Getenv("INSURA_DEBUG") != "" {
		log = logger.New(cfg.Logger.Level, "console", "stdout")
	}

	sess := session.New(session.NewFileStorage(cfg.Client.SessionFile), log)
	client := gateway.NewClient(
		cfg.Client.BaseURL,
		cfg.Client.Timeout,
		sess,
		log,
		gateway.WithSessionInvalidator(sess),
	)

	a := &app{
		cfg:     cfg,
		logger:  log,
		session: sess,
		client:  client,
		store:   store.New(client, log),
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "whoami":
		return a.whoami(ctx)
	case "logout":
		return a.logout(ctx)
	case "list":
		return a.list(ctx, args)
	case "get":
		return a.get(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "pdf":
		return a.pdf(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	_ = fs.Parse(args)

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirmation, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}

	registration := domain.Registration{
		Name:                 *name,
		Email:                *email,
		Password:             password,
		PasswordConfirmation: confirmation,
	}
	if err := registration.Validate(); err != nil {
		return err
	}

	resp, err := a.client.Register(ctx, registration)
	if err != nil {
		return err
	}
	if err := a.session.Establish(resp.Token, &resp.User); err != nil {
		return err
	}

	fmt.Printf("Registered and logged in as %s\n", resp.User.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	_ = fs.Parse(args)

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	credentials := domain.Credentials{Email: *email, Password: password}
	if err := credentials.Validate(); err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, credentials)
	if err != nil {
		return err
	}
	if err := a.session.Establish(resp.Token, &resp.User); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", resp.User.Email)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		return domain.ErrUnauthorized
	}

	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.session.SetUser(user); err != nil {
		a.logger.Warn("Failed to persist user snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	fmt.Printf("%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}

	// Сначала отзываем токен на сервере, затем чистим локальную сессию
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn("Server logout failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	a.session.Invalidate()

	fmt.Println("Logged out")
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "search by policy number or holder name")
	status := fs.String("status", "", "filter by status")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 15, "items per page")
	_ = fs.Parse(args)

	a.store.SetFilters(domain.ListFilterPatch{
		Search:  search,
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
	if err := a.store.RefreshList(ctx); err != nil {
		return err
	}

	info := a.store.PageInfo()
	for _, policy := range a.store.Items() {
		fmt.Printf("%6d  %-16s %-10s %-30s %s\n",
			policy.ID, policy.PolicyNo, policy.PolicyStatus, policy.PolicyHolderName, policy.PolicyExpirationDate)
	}
	fmt.Printf("Page %d of %d (%d total)\n", info.CurrentPage, info.LastPage, info.Total)
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	id, err := parseIDFlag("get", args)
	if err != nil {
		return err
	}

	policy, err := a.store.LoadOne(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(policy)
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	file := fs.String("file", "", "path to policy JSON file")
	_ = fs.Parse(args)

	var form domain.PolicyForm
	if err := readJSONFile(*file, &form); err != nil {
		return err
	}

	policy, err := a.store.Create(ctx, &form)
	if err != nil {
		return err
	}

	fmt.Printf("Created policy %s (id %d)\n", policy.PolicyNo, policy.ID)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	idFlag := fs.String("id", "", "policy id")
	file := fs.String("file", "", "path to patch JSON file")
	_ = fs.Parse(args)

	id, err := strconv.ParseInt(*idFlag, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid -id value: %q", *idFlag)
	}

	var patch domain.PolicyPatch
	if err := readJSONFile(*file, &patch); err != nil {
		return err
	}

	policy, err := a.store.Update(ctx, id, &patch)
	if err != nil {
		return err
	}

	fmt.Printf("Updated policy %s (id %d)\n", policy.PolicyNo, policy.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	id, err := parseIDFlag("delete", args)
	if err != nil {
		return err
	}

	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Printf("Deleted policy %d\n", id)
	return nil
}

func (a *app) pdf(ctx context.Context, args []string) error {
	id, err := parseIDFlag("pdf", args)
	if err != nil {
		return err
	}

	url, err := a.store.GenerateDocument(ctx, id)
	if err != nil {
		return err
	}

	fmt.Println(url)
	return nil
}

// parseIDFlag разбирает единственный флаг -id
func parseIDFlag(command string, args []string) (int64, error) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	idFlag := fs.String("id", "", "policy id")
	_ = fs.Parse(args)

	id, err := strconv.ParseInt(*idFlag, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid -id value: %q", *idFlag)
	}
	return id, nil
}

// readJSONFile читает и декодирует JSON файл
func readJSONFile(path string, out interface{}) error {
	if path == "" {
		return fmt.Errorf("-file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// readPassword запрашивает пароль со стандартного ввода.
// INSURA_PASSWORD позволяет передать его неинтерактивно
func readPassword(prompt string) (string, error) {
	if password := os.Getenv("INSURA_PASSWORD"); password != "" {
		return password, nil
	}

	fmt.Fprint(os.Stderr, prompt)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// printJSON печатает значение с отступами
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// printError печатает ошибку; ошибки валидации разворачиваются по полям
func printError(err error) {
	if vErr, ok := domain.AsValidationError(err); ok {
		fmt.Fprintf(os.Stderr, "Error: %s\n", vErr.Message)

		paths := make([]string, 0, len(vErr.Errors))
		for path := range vErr.Errors {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			for _, msg := range vErr.Errors[path] {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", path, msg)
			}
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
