package accounts

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"megakeep/internal/domain"
)

// ErrNoValidAccounts is returned when the accounts file yields zero usable
// entries after filtering. It is fatal to the run.
var ErrNoValidAccounts = errors.New("no valid accounts found")

const minFieldLength = 3

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Logger interface {
	Warnf(template string, args ...interface{})
}

type Store struct {
	logger Logger
}

func NewStore(logger Logger) *Store {
	return &Store{logger: logger}
}

// Load reads the accounts file: one "<email> <password>" pair per line,
// separated by the first run of whitespace. Blank lines and lines starting
// with '#' are skipped silently; malformed lines are skipped with a warning.
func (s *Store) Load(path string) ([]domain.Account, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts file: %w", err)
	}
	defer file.Close()

	var accounts []domain.Account

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		account, ok := s.parseLine(line, lineNo)
		if !ok {
			continue
		}
		accounts = append(accounts, account)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoValidAccounts)
	}

	return accounts, nil
}

func (s *Store) parseLine(line string, lineNo int) (domain.Account, bool) {
	sep := strings.IndexFunc(line, unicode.IsSpace)
	if sep < 0 {
		s.logger.Warnf("Line %d: no password field, skipping", lineNo)
		return domain.Account{}, false
	}

	email := line[:sep]
	// The password is everything after the first whitespace run, verbatim.
	password := strings.TrimLeftFunc(line[sep:], unicode.IsSpace)
	if password == "" {
		s.logger.Warnf("Line %d: no password field, skipping", lineNo)
		return domain.Account{}, false
	}

	if len(email) < minFieldLength || len(password) < minFieldLength {
		s.logger.Warnf("Line %d: email or password shorter than %d characters, skipping", lineNo, minFieldLength)
		return domain.Account{}, false
	}

	if !emailPattern.MatchString(email) {
		s.logger.Warnf("Line %d: %q does not look like an email address", lineNo, email)
	}

	return domain.Account{Email: email, Password: password}, true
}
