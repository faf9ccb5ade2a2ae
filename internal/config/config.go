package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required values are enforced by must(); optional
// values fall back to defaults that match the production deployment.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	// Backing sheet (remote tabular store reached through a scripting endpoint).
	SheetURL        string        // deployed web-app URL of the sheet endpoint
	SheetHeaderRows int           // title/header rows to skip before data (1 or 2 depending on deployment)
	ServerSearch    bool          // true: use the endpoint's searchTicket/checkTickets actions; false: scan client-side
	SnapshotTTL     time.Duration // redis snapshot cache TTL for full-table reads (0 disables)

	// Local database (operator accounts, refresh tokens, notification log).
	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	// Operator auth.
	JWTSecret      string
	AccessTTLMin   int // access token time-to-live in minutes
	RefreshTTLDays int // refresh token time-to-live in days
	BcryptCost     int

	// Ticket entry.
	BatchMax    int // maximum tickets accepted in one batch add
	TicketPrice int // per-ticket price used for the revenue stat

	// Event details used in notification messages and calendar links.
	EventName     string
	EventLocation string
	EventAddress  string
	EventDate     string    // human-readable date for the SMS body
	EventTime     string    // human-readable time for the SMS body
	EventStart    time.Time // calendar link start
	EventEnd      time.Time // calendar link end
	EventTimezone string

	// Outbound SMS.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	NotifyDelay      time.Duration // pause between sequential sends
	NotifyMax        int           // recipient cap per run
}

// Load reads configuration from environment variables. Missing required
// variables cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		SheetURL:        must("SHEET_URL"),
		SheetHeaderRows: envInt("SHEET_HEADER_ROWS", 2),
		ServerSearch:    envBool("SHEET_SERVER_SEARCH", true),
		SnapshotTTL:     envDur("SHEET_SNAPSHOT_TTL", 5*time.Second),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		BatchMax:    envInt("TICKET_BATCH_MAX", 50),
		TicketPrice: envInt("TICKET_PRICE", 120),

		EventName:     envStr("EVENT_NAME", ""),
		EventLocation: envStr("EVENT_LOCATION", ""),
		EventAddress:  envStr("EVENT_ADDRESS", ""),
		EventDate:     envStr("EVENT_DATE", ""),
		EventTime:     envStr("EVENT_TIME", ""),
		EventStart:    envTime("EVENT_START"),
		EventEnd:      envTime("EVENT_END"),
		EventTimezone: envStr("EVENT_TIMEZONE", "America/Toronto"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_PHONE_NUMBER"),
		NotifyDelay:      envDur("NOTIFY_DELAY", time.Second),
		NotifyMax:        envInt("NOTIFY_MAX_RECIPIENTS", 500),
	}
}

// SMSEnabled reports whether outbound messaging is configured. Deployments
// that only run the door can omit the Twilio variables entirely.
func (c Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envTime parses an optional RFC 3339-style local timestamp
// ("2006-01-02T15:04:05"). A zero time is returned when unset or malformed;
// the calendar link is simply omitted from messages in that case.
func envTime(key string) time.Time {
	v := os.Getenv(key)
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02T15:04:05", v)
	if err != nil {
		log.Printf("WARN: invalid timestamp for %s: %q", key, v)
		return time.Time{}
	}
	return t
}
