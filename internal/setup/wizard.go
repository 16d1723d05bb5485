package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/alikhantareen/natural-language-query-finder/internal/config"
	"github.com/alikhantareen/natural-language-query-finder/internal/nl2sql"
)

const DefaultEnvFile = ".env.local"

const (
	KeyDatabaseURL = "DATABASE_URL"
	KeyAPIKey      = "OPENAI_API_KEY"
	KeyModel       = "LLM_MODEL"
	KeyTemperature = "LLM_TEMPERATURE"
)

const (
	defaultDBHost = "localhost"
	defaultDBPort = "5432"
	defaultDBName = "natural_language_db"
)

var ErrCancelled = errors.New("setup cancelled")

type Answers struct {
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	APIKey      string
	Model       string
	Temperature string
}

// DatabaseURL renders the answers as a postgres connection string and
// checks that the driver can parse it.
func (a Answers) DatabaseURL() (string, error) {
	host := strings.TrimSpace(a.DBHost)
	if host == "" {
		return "", fmt.Errorf("database host is required")
	}
	port, err := strconv.Atoi(strings.TrimSpace(a.DBPort))
	if err != nil || port <= 0 || port > 65535 {
		return "", fmt.Errorf("database port %q is invalid", a.DBPort)
	}
	name := strings.TrimSpace(a.DBName)
	if name == "" {
		return "", fmt.Errorf("database name is required")
	}

	u := url.URL{
		Scheme:   "postgresql",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + name,
		RawQuery: "schema=public",
	}
	if user := strings.TrimSpace(a.DBUser); user != "" {
		u.User = url.UserPassword(user, a.DBPassword)
	}
	dsn := u.String()
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("database url is invalid: %w", err)
	}
	return dsn, nil
}

// Values validates the answers and returns the env file contents.
func (a Answers) Values() (map[string]string, error) {
	dsn, err := a.DatabaseURL()
	if err != nil {
		return nil, err
	}
	temperature, err := strconv.ParseFloat(strings.TrimSpace(a.Temperature), 64)
	if err != nil {
		return nil, fmt.Errorf("temperature %q is not a number", a.Temperature)
	}
	settings := nl2sql.Settings{
		Model:        strings.TrimSpace(a.Model),
		Temperature:  temperature,
		SystemPrompt: nl2sql.DefaultSystemPrompt,
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return map[string]string{
		KeyDatabaseURL: dsn,
		KeyAPIKey:      strings.TrimSpace(a.APIKey),
		KeyModel:       settings.Model,
		KeyTemperature: strconv.FormatFloat(temperature, 'f', -1, 64),
	}, nil
}

type Result struct {
	Path   string
	Values map[string]string
}

type Wizard struct {
	prompter Prompter
	path     string
}

func NewWizard(prompter Prompter, path string) (*Wizard, error) {
	if prompter == nil {
		return nil, fmt.Errorf("prompter is required")
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultEnvFile
	}
	return &Wizard{prompter: prompter, path: path}, nil
}

// Run collects answers and writes the env file. An existing file is only
// replaced after confirmation, and its values prefill the prompts.
func (w *Wizard) Run() (Result, error) {
	defaults := Answers{
		DBHost:      defaultDBHost,
		DBPort:      defaultDBPort,
		DBName:      defaultDBName,
		Model:       nl2sql.DefaultModel,
		Temperature: strconv.FormatFloat(nl2sql.DefaultTemperature, 'f', -1, 64),
	}

	if _, err := os.Stat(w.path); err == nil {
		overwrite, err := w.prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", w.path), false)
		if err != nil {
			return Result{}, err
		}
		if !overwrite {
			return Result{}, ErrCancelled
		}
		existing, err := config.ReadEnvFile(w.path)
		if err != nil {
			return Result{}, err
		}
		defaults = prefill(defaults, existing)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Result{}, fmt.Errorf("stat %s: %w", w.path, err)
	}

	answers, err := w.ask(defaults)
	if err != nil {
		return Result{}, err
	}
	values, err := answers.Values()
	if err != nil {
		return Result{}, err
	}
	if err := writeEnvFile(w.path, values); err != nil {
		return Result{}, err
	}
	return Result{Path: w.path, Values: values}, nil
}

// writeEnvFile restricts the file to its owner before any secret is written.
func writeEnvFile(path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := file.Chmod(0o600); err != nil {
		_ = file.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if _, err := file.WriteString(content + "\n"); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (w *Wizard) ask(defaults Answers) (Answers, error) {
	var out Answers
	prompts := []struct {
		label string
		def   string
		dst   *string
	}{
		{"Database host", defaults.DBHost, &out.DBHost},
		{"Database port", defaults.DBPort, &out.DBPort},
		{"Database username", defaults.DBUser, &out.DBUser},
	}
	for _, p := range prompts {
		value, err := w.prompter.Ask(p.label, p.def)
		if err != nil {
			return Answers{}, err
		}
		*p.dst = orDefault(value, p.def)
	}

	password, err := w.prompter.AskSecret("Database password")
	if err != nil {
		return Answers{}, err
	}
	out.DBPassword = password
	if password == "" {
		out.DBPassword = defaults.DBPassword
	}

	value, err := w.prompter.Ask("Database name", defaults.DBName)
	if err != nil {
		return Answers{}, err
	}
	out.DBName = orDefault(value, defaults.DBName)

	key, err := w.prompter.AskSecret("LLM API key")
	if err != nil {
		return Answers{}, err
	}
	out.APIKey = orDefault(key, defaults.APIKey)

	value, err = w.prompter.Ask("LLM model", defaults.Model)
	if err != nil {
		return Answers{}, err
	}
	out.Model = orDefault(value, defaults.Model)

	value, err = w.prompter.Ask("Temperature", defaults.Temperature)
	if err != nil {
		return Answers{}, err
	}
	out.Temperature = orDefault(value, defaults.Temperature)
	return out, nil
}

func prefill(defaults Answers, existing map[string]string) Answers {
	if raw := existing[KeyDatabaseURL]; raw != "" {
		if u, err := url.Parse(raw); err == nil {
			if host := u.Hostname(); host != "" {
				defaults.DBHost = host
			}
			if port := u.Port(); port != "" {
				defaults.DBPort = port
			}
			if name := strings.TrimPrefix(u.Path, "/"); name != "" {
				defaults.DBName = name
			}
			if u.User != nil {
				defaults.DBUser = u.User.Username()
				defaults.DBPassword, _ = u.User.Password()
			}
		}
	}
	if v := existing[KeyAPIKey]; v != "" {
		defaults.APIKey = v
	}
	if v := existing[KeyModel]; v != "" {
		defaults.Model = v
	}
	if v := existing[KeyTemperature]; v != "" {
		defaults.Temperature = v
	}
	return defaults
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
