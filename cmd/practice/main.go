// practice is a terminal type-to-reveal drill. Words come from the text
// given on the command line or from the vocabulary CSV; the finished session
// is added to the learner's progress in SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/samber/lo"

	"github.com/jusunglee/typetoreveal/internal/answer"
	"github.com/jusunglee/typetoreveal/internal/db/sqlite"
	"github.com/jusunglee/typetoreveal/internal/logger"
	"github.com/jusunglee/typetoreveal/internal/progress"
	"github.com/jusunglee/typetoreveal/internal/transliteration"
	"github.com/jusunglee/typetoreveal/internal/vocab"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("typetoreveal-practice")

	var (
		vocabPath     = fs.StringLong("vocab", "", "Vocabulary CSV (index,hindi,transliteration,meaning)")
		text          = fs.StringLong("text", "", "Practice the words of this Devanagari text instead of the vocabulary")
		count         = fs.IntLong("count", 20, "Number of words per session (0 for all)")
		shuffle       = fs.BoolLong("shuffle", "Shuffle the words")
		overridesPath = fs.StringLong("overrides", "", "YAML file replacing the built-in spelling overrides")
		sqlitePath    = fs.StringLong("sqlite-path", "typetoreveal.db", "SQLite database for practice progress")
		visitorID     = fs.StringLong("visitor", defaultVisitor(), "Learner id the session is recorded under")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("PRACTICE")); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()
	ctx := context.Background()

	genOpts := []transliteration.Option{transliteration.WithLogger(log)}
	if *overridesPath != "" {
		table, err := transliteration.LoadOverridesFile(*overridesPath)
		if err != nil {
			return err
		}
		genOpts = append(genOpts, transliteration.WithOverrides(table))
	}
	variants := transliteration.NewGenerator(genOpts...)

	var vocabulary *vocab.Vocabulary
	if *vocabPath != "" {
		v, err := vocab.LoadFile(*vocabPath)
		if err != nil {
			return fmt.Errorf("loading vocabulary: %w", err)
		}
		vocabulary = v
	}

	words := practiceWords(*text, vocabulary, *count, *shuffle)
	if len(words) == 0 {
		return errors.New("nothing to practice: pass --text or --vocab")
	}

	repo, err := sqlite.New(ctx, *sqlitePath)
	if err != nil {
		return fmt.Errorf("opening SQLite database: %w", err)
	}
	defer repo.Close()

	final, err := tea.NewProgram(newModel(words, answer.NewChecker(variants, vocabulary), time.Now)).Run()
	if err != nil {
		return fmt.Errorf("running practice: %w", err)
	}
	m := final.(model)

	sum, recorded, err := progress.NewService(repo, progress.WithLogger(log)).Record(ctx, *visitorID, progress.Session{
		Duration: m.elapsed(),
		Words:    m.practiced(),
		Correct:  m.correct(),
	})
	if err != nil {
		return fmt.Errorf("recording session: %w", err)
	}
	if recorded {
		fmt.Printf("Practiced %d words. Streak: %d day(s), longest %d.\n", m.practiced(), sum.CurrentStreak, sum.LongestStreak)
	}
	return nil
}

// practiceWords picks the session's words: the distinct words of text when
// given, else the vocabulary's words in file order.
func practiceWords(text string, v *vocab.Vocabulary, count int, shuffle bool) []string {
	var words []string
	if strings.TrimSpace(text) != "" {
		words = vocab.UniqueWords(text)
	} else {
		words = lo.Map(v.Entries(), func(e vocab.Entry, _ int) string { return e.Hindi })
	}
	if shuffle {
		rand.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	}
	if count > 0 && len(words) > count {
		words = words[:count]
	}
	return words
}

func defaultVisitor() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli-" + u
	}
	return "cli"
}
