package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/triviatastic/triviatastic/pkg/archive"
	"github.com/triviatastic/triviatastic/pkg/cache"
	"github.com/triviatastic/triviatastic/pkg/finalround"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/queue"
	"github.com/triviatastic/triviatastic/pkg/scores"
	"github.com/triviatastic/triviatastic/pkg/session"
	"github.com/triviatastic/triviatastic/pkg/store"
	"github.com/triviatastic/triviatastic/pkg/trivia"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
	"github.com/triviatastic/triviatastic/pkg/version"
	"github.com/triviatastic/triviatastic/pkg/workers"
)

type config struct {
	StoreURL   string `env:"STORE_URL" envDefault:"http://localhost:8080"`
	ArchiveURL string `env:"ARCHIVE_URL" envDefault:"http://localhost:8081"`
	CachePath  string `env:"CACHE_PATH"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	_ = godotenv.Load()

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		panic(fmt.Sprintf("Failed to parse environment: %v", err))
	}

	boardFile := flag.String("board", "", "Path to a board JSON file (host a new game)")
	gameID := flag.String("game", "", "Archive game id to host")
	joinCode := flag.String("join", "", "Join code of a game to watch")
	playerList := flag.String("players", "", "Comma-separated player names (host only)")
	playerName := flag.String("name", "", "Your player name, used for final round submissions")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel))

	log.Info("Starting client version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var localCache cache.Cache
	if cfg.CachePath != "" {
		sqliteCache, err := cache.NewSQLiteCache(cfg.CachePath)
		if err != nil {
			panic(fmt.Sprintf("Failed to open cache: %v", err))
		}
		defer sqliteCache.Close()
		localCache = sqliteCache
	} else {
		localCache = cache.NewInMemoryCache()
	}
	stateStore := store.NewStateStore(store.NewHTTPRemote(cfg.StoreURL, nil), localCache)

	var sess *session.GameSession
	switch {
	case *joinCode != "":
		sess, err = session.NewViewerSession(session.NewViewerSessionOptions{Identifier: *joinCode})
		if err != nil {
			panic(fmt.Sprintf("Failed to join game: %v", err))
		}

		snapshotQueue := queue.NewInMemoryQueue(64)
		pollWorker := workers.NewPollGameStateWorker(workers.NewPollGameStateWorkerOptions{
			Store:         stateStore,
			Session:       sess,
			SnapshotQueue: snapshotQueue,
		})
		go pollWorker.Start(ctx)
		fmt.Printf("Watching game %s\n", sess.Identifier())

	case *boardFile != "" || *gameID != "":
		board, err := loadBoard(ctx, cfg, *boardFile, *gameID)
		if err != nil {
			panic(fmt.Sprintf("Failed to load board: %v", err))
		}

		saveChan := make(chan session.SaveRequest, 100)
		sess, err = session.NewCreatorSession(session.NewCreatorSessionOptions{
			Board:    board,
			GameID:   *gameID,
			SaveChan: saveChan,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create game: %v", err))
		}
		if *playerList != "" {
			var players []types.Player
			for _, name := range strings.Split(*playerList, ",") {
				players = append(players, types.Player{Name: strings.TrimSpace(name)})
			}
			if err := sess.SetUsers(players); err != nil {
				panic(fmt.Sprintf("Failed to set players: %v", err))
			}
		}

		pushWorker := workers.NewPushGameStateWorker(workers.NewPushGameStateWorkerOptions{
			Store:           stateStore,
			SaveRequestChan: saveChan,
			Session:         sess,
		})
		go pushWorker.Start(ctx)
		fmt.Printf("Hosting game, join code: %s\n", sess.Identifier())

	default:
		fmt.Fprintln(os.Stderr, "Either -board/-game (host) or -join (watch) is required")
		os.Exit(2)
	}
	defer sess.Close()

	coordinator := finalround.NewCoordinator(finalround.NewCoordinatorOptions{
		Session: sess,
		Store:   stateStore,
	})
	if sess.Role() == session.RoleCreator {
		wagerWorker := workers.NewWagerPollWorker(workers.NewWagerPollWorkerOptions{
			Coordinator: coordinator,
			Session:     sess,
		})
		go wagerWorker.Start(ctx)
	}
	runCommandLoop(ctx, sess, coordinator, *playerName)
}

func loadBoard(ctx context.Context, cfg config, boardFile, gameID string) (*types.BoardData, error) {
	if boardFile != "" {
		return archive.LoadBoardFile(boardFile)
	}
	provider := archive.NewHTTPProvider(cfg.ArchiveURL, nil)
	return provider.FetchBoard(ctx, gameID)
}

// runCommandLoop reads commands from stdin until EOF or quit. This is a
// thin terminal surface over the session; all game semantics live in the
// session, coordinator and score packages.
func runCommandLoop(ctx context.Context, sess *session.GameSession, coordinator *finalround.Coordinator, playerName string) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Commands: state, board, scores, flip C Q, step C Q, mark NAME correct|incorrect C Q,")
	fmt.Println("  submit C Q, dismiss C Q, round first|second|final, wager N, answer TEXT,")
	fmt.Println("  final NAME correct|incorrect, advance, finalscores, close, quit")

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "quit":
			return
		case "state":
			err = printState(sess)
		case "board":
			err = printBoard(sess)
		case "scores":
			err = printScores(sess)
		case "flip":
			err = withTile(fields, sess.FlipTile)
		case "step":
			err = withTile(fields, sess.AdvanceModalStep)
		case "submit":
			err = withTile(fields, sess.SubmitScoring)
		case "dismiss":
			err = withTile(fields, sess.DismissScoring)
		case "mark":
			if len(fields) != 5 {
				err = fmt.Errorf("usage: mark NAME correct|incorrect C Q")
				break
			}
			var tileID string
			if tileID, err = tileArg(fields[3], fields[4]); err != nil {
				break
			}
			err = sess.ToggleGuess(tileID, fields[1], trivia.Verdict(fields[2]))
		case "round":
			if len(fields) != 2 {
				err = fmt.Errorf("usage: round first|second|final")
				break
			}
			err = sess.SwitchRound(types.Round(fields[1]))
		case "wager":
			if len(fields) != 2 || playerName == "" {
				err = fmt.Errorf("usage: wager N (requires -name)")
				break
			}
			var amount int
			if amount, err = strconv.Atoi(fields[1]); err != nil {
				err = fmt.Errorf("bad wager amount: %s", fields[1])
				break
			}
			err = coordinator.SubmitWager(ctx, playerName, amount)
		case "answer":
			if len(fields) < 2 || playerName == "" {
				err = fmt.Errorf("usage: answer TEXT (requires -name)")
				break
			}
			err = coordinator.SubmitAnswer(ctx, playerName, strings.Join(fields[1:], " "))
		case "final":
			if len(fields) != 3 {
				err = fmt.Errorf("usage: final NAME correct|incorrect")
				break
			}
			err = coordinator.ToggleOutcome(fields[1], trivia.Verdict(fields[2]))
		case "advance":
			err = coordinator.ForceAdvance()
		case "finalscores":
			err = showFinalScores(coordinator)
		case "close":
			err = coordinator.Close()
		default:
			err = fmt.Errorf("unknown command: %s", fields[0])
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func withTile(fields []string, op func(string) error) error {
	if len(fields) != 3 {
		return fmt.Errorf("usage: %s C Q", fields[0])
	}
	tileID, err := tileArg(fields[1], fields[2])
	if err != nil {
		return err
	}
	return op(tileID)
}

// tileArg builds a tile id from command arguments, rejecting anything
// that is not a pair of numeric indices.
func tileArg(category, clue string) (string, error) {
	categoryIndex, err := strconv.Atoi(category)
	if err != nil {
		return "", fmt.Errorf("bad category index: %s", category)
	}
	clueIndex, err := strconv.Atoi(clue)
	if err != nil {
		return "", fmt.Errorf("bad clue index: %s", clue)
	}
	return types.TileID(categoryIndex, clueIndex), nil
}

func printState(sess *session.GameSession) error {
	doc, err := sess.GetCurrentState()
	if err != nil {
		return err
	}
	fmt.Printf("round=%s categories=%d players=%d", doc.Round, len(doc.Categories), len(doc.Users))
	if doc.Final != nil {
		fmt.Printf(" final-phase=%s", doc.Final.Phase)
	}
	fmt.Println()
	return nil
}

func printBoard(sess *session.GameSession) error {
	doc, err := sess.GetCurrentState()
	if err != nil {
		return err
	}
	for categoryIndex, category := range doc.Categories {
		fmt.Printf("%d: %s\n", categoryIndex, category.Title)
		for clueIndex, clue := range category.Clues {
			marker := " "
			if tile, ok := doc.Tile(types.TileID(categoryIndex, clueIndex)); ok && tile.IsBlank {
				marker = "x"
			}
			fmt.Printf("  [%s] %d: $%d\n", marker, clueIndex, clue.Value)
		}
	}
	return nil
}

func printScores(sess *session.GameSession) error {
	players, err := sess.CalculateScores()
	if err != nil {
		return err
	}
	for _, player := range scores.SortedDescending(players) {
		fmt.Printf("%s: $%d\n", player.Name, player.Score)
	}
	return nil
}

func showFinalScores(coordinator *finalround.Coordinator) error {
	unmarked, err := coordinator.UnmarkedPlayers()
	if err != nil {
		return err
	}
	if len(unmarked) > 0 {
		fmt.Printf("unmarked players: %s (their scores will not change)\n", strings.Join(unmarked, ", "))
	}
	if err := coordinator.ShowFinalScores(); err != nil {
		return err
	}
	players, err := coordinator.FinalScores()
	if err != nil {
		return err
	}
	for _, player := range players {
		fmt.Printf("%s: $%d\n", player.Name, player.Score)
	}
	return nil
}
