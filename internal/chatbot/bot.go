// internal/chatbot/bot.go
//
// Transport-agnostic chat-bot front-end.
//
// Responsibilities:
//   - One game per user, held in a per-user session.
//   - "!hangman" starts a game against the computer; "!hangman @user"
//     challenges another user, who answers "!accept" or "!decline".
//   - The challenger supplies the secret privately with "!word <secret>".
//   - "!quit" cancels a game (it is marked lost) or a pending challenge.
//   - Any other message in the game's channel that is one letter, or as
//     long as the secret, is taken as a guess.
//
// Handle is safe for concurrent use; transports call it for every
// incoming message and deliver the returned replies.

package chatbot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/render"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/telemetry"
	"github.com/robalobadob/hangman/internal/words"
)

// DefaultTimeout bounds how long a challenge waits for an answer or a word.
const DefaultTimeout = 60 * time.Second

// Message is one incoming chat message.
type Message struct {
	User    string
	Channel string
	Text    string
	Private bool // direct message to the bot
}

// Reply is one outgoing message. A non-empty To makes it a private
// message to that user; otherwise it goes to Channel.
type Reply struct {
	Channel string `json:"channel,omitempty"`
	To      string `json:"to,omitempty"`
	Text    string `json:"text"`
}

// Bot plays hangman with any number of chat users.
type Bot struct {
	mu           sync.Mutex
	source       words.Source
	rng          *rand.Rand
	maxIncorrect int
	timeout      time.Duration
	now          func() time.Time
	tracer       trace.Tracer

	sessions   map[string]*session.Session // by user, kept across games
	instances  map[string]*instance        // by player
	challenges map[string]*challenge       // by challenged user
}

// instance is a user's live game.
type instance struct {
	player  string
	host    string // challenger, empty against the computer
	channel string
	session *session.Session
}

type challenge struct {
	from, to string
	channel  string
	accepted bool
	at       time.Time
}

// Option customises a Bot.
type Option func(*Bot)

// WithMaxIncorrect sets the incorrect-guess limit for new games.
func WithMaxIncorrect(n int) Option { return func(b *Bot) { b.maxIncorrect = n } }

// WithTimeout sets how long challenges stay open.
func WithTimeout(d time.Duration) Option { return func(b *Bot) { b.timeout = d } }

// WithClock replaces time.Now for the bot and its games.
func WithClock(now func() time.Time) Option { return func(b *Bot) { b.now = now } }

// WithTracer replaces the default "chatbot" tracer.
func WithTracer(t trace.Tracer) Option { return func(b *Bot) { b.tracer = t } }

// New returns a bot drawing computer words from src.
func New(src words.Source, rng *rand.Rand, opts ...Option) *Bot {
	b := &Bot{
		source:       src,
		rng:          rng,
		maxIncorrect: game.DefaultMaxIncorrect,
		timeout:      DefaultTimeout,
		now:          time.Now,
		sessions:     make(map[string]*session.Session),
		instances:    make(map[string]*instance),
		challenges:   make(map[string]*challenge),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer == nil {
		b.tracer = telemetry.Tracer("chatbot")
	}
	return b
}

// Playing reports whether user has a game in progress.
func (b *Bot) Playing(user string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.instances[user]
	return ok
}

// Handle processes one message and returns the replies to deliver.
func (b *Bot) Handle(ctx context.Context, m Message) []Reply {
	text := strings.TrimSpace(m.Text)
	if text == "" || m.User == "" {
		return nil
	}
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	ctx, span := b.tracer.Start(ctx, "chatbot.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("chat.user", m.User),
		attribute.Bool("chat.private", m.Private),
	)

	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.expire()
	switch strings.ToLower(cmd) {
	case "!hangman":
		span.SetAttributes(attribute.String("chat.command", "hangman"))
		if arg == "" {
			return append(out, b.play(ctx, m)...)
		}
		return append(out, b.challenge(m, strings.TrimPrefix(arg, "@"))...)
	case "!accept":
		return append(out, b.answer(m, true)...)
	case "!decline":
		return append(out, b.answer(m, false)...)
	case "!word":
		return append(out, b.word(ctx, m, arg)...)
	case "!quit":
		return append(out, b.quit(m)...)
	case "!stats":
		played, won := b.sessionFor(m.User).Stats()
		return append(out, Reply{Channel: m.Channel, To: privateTo(m), Text: fmt.Sprintf(
			"@%s has played %d %s of Hangman and won %d", m.User, played, plural(played), won)})
	case "!help":
		return append(out, Reply{Channel: m.Channel, To: privateTo(m), Text: help})
	}
	return append(out, b.guess(m, text)...)
}

const help = "Commands: `!hangman` to play the computer, `!hangman @user` to challenge someone, " +
	"`!accept` / `!decline` to answer a challenge, `!word <secret>` (private) to set your challenge word, " +
	"`!quit` to give up, `!stats` for your record. During a game, send a letter or the whole word to guess."

func plural(n int) string {
	if n == 1 {
		return "game"
	}
	return "games"
}

func privateTo(m Message) string {
	if m.Private {
		return m.User
	}
	return ""
}

// expire drops challenges nobody answered in time.
func (b *Bot) expire() []Reply {
	var out []Reply
	now := b.now()
	for to, c := range b.challenges {
		if now.Sub(c.at) < b.timeout {
			continue
		}
		delete(b.challenges, to)
		if c.accepted {
			out = append(out, Reply{To: c.from, Text: fmt.Sprintf(
				"Did not receive word to challenge @%s with within %d seconds", c.to, int(b.timeout.Seconds()))})
			continue
		}
		out = append(out, Reply{Channel: c.channel, Text: fmt.Sprintf(
			"@%s, @%s did not answer your Hangman challenge", c.from, c.to)})
	}
	return out
}

func (b *Bot) inProgress(m Message, inst *instance) []Reply {
	return []Reply{{Channel: m.Channel, To: privateTo(m), Text: fmt.Sprintf(
		"A game of Hangman is already in progress in #%s\n\n%s", inst.channel, b.board(inst, "Game recovered"))}}
}

// sessionFor returns user's session, creating it on first use. Sessions
// outlive games so a user does not see a word again until the list is used
// up. Each session gets its own generator, seeded from the bot's.
func (b *Bot) sessionFor(user string) *session.Session {
	s, ok := b.sessions[user]
	if !ok {
		s = session.New(b.source, words.NewRand(b.rng.Uint64(), b.rng.Uint64()),
			session.WithMaxIncorrect(b.maxIncorrect),
			session.WithGameOptions(game.WithClock(b.now)),
		)
		b.sessions[user] = s
	}
	return s
}

func (b *Bot) play(ctx context.Context, m Message) []Reply {
	if m.Private {
		return []Reply{{To: m.User, Text: "Start a game from a channel"}}
	}
	if inst, ok := b.instances[m.User]; ok {
		return b.inProgress(m, inst)
	}
	if c, ok := b.challenges[m.User]; ok {
		return []Reply{{Channel: m.Channel, Text: fmt.Sprintf(
			"@%s, answer the Hangman challenge from @%s first (`!accept` / `!decline`)", m.User, c.from)}}
	}
	s := b.sessionFor(m.User)
	if _, err := s.Start(ctx, ""); err != nil {
		if errors.Is(err, words.ErrNoWords) {
			return []Reply{{Channel: m.Channel, Text: "Cannot play against computer, wordlist is empty"}}
		}
		log.Error().Err(err).Str("user", m.User).Msg("chatbot: start game")
		return []Reply{{Channel: m.Channel, Text: "Cannot play against computer right now"}}
	}
	inst := &instance{player: m.User, channel: m.Channel, session: s}
	b.instances[m.User] = inst
	log.Info().Str("user", m.User).Str("gameId", s.Current().ID()).Msg("chatbot: game started")
	return []Reply{{Channel: m.Channel, Text: b.board(inst, "Enter a guess to start")}}
}

func (b *Bot) challenge(m Message, target string) []Reply {
	reply := func(text string) []Reply {
		return []Reply{{Channel: m.Channel, To: privateTo(m), Text: text}}
	}
	switch {
	case m.Private:
		return reply("Challenge someone from a channel")
	case target == "" || strings.ContainsAny(target, " \t"):
		return reply("Usage: `!hangman @user`")
	case target == m.User:
		return reply("You can't challenge yourself")
	}
	if inst, ok := b.instances[m.User]; ok {
		return b.inProgress(m, inst)
	}
	if _, ok := b.instances[target]; ok {
		return reply(fmt.Sprintf("@%s is already playing Hangman", target))
	}
	if _, ok := b.challenges[target]; ok {
		return reply(fmt.Sprintf("@%s already has a Hangman challenge waiting", target))
	}
	for _, c := range b.challenges {
		if c.from == m.User {
			return reply(fmt.Sprintf("You already challenged @%s", c.to))
		}
	}
	b.challenges[target] = &challenge{from: m.User, to: target, channel: m.Channel, at: b.now()}
	return reply(fmt.Sprintf(
		"@%s, @%s has challenged you to a game of Hangman.\n\nDo you accept? (`!accept` / `!decline`)", target, m.User))
}

func (b *Bot) answer(m Message, accept bool) []Reply {
	c, ok := b.challenges[m.User]
	if !ok || c.accepted {
		return []Reply{{Channel: m.Channel, To: privateTo(m), Text: "You have no Hangman challenge to answer"}}
	}
	if inst, ok := b.instances[m.User]; ok {
		return b.inProgress(m, inst)
	}
	if !accept {
		delete(b.challenges, m.User)
		return []Reply{{Channel: c.channel, Text: fmt.Sprintf(
			"@%s, @%s has declined your Hangman challenge", c.from, c.to)}}
	}
	c.accepted = true
	c.at = b.now()
	return []Reply{
		{Channel: c.channel, Text: fmt.Sprintf(
			"@%s, @%s has accepted your Hangman challenge.\n\nRespond via private message with the word you wish to challenge @%s with.",
			c.from, c.to, c.to)},
		{To: c.from, Text: fmt.Sprintf("Enter the word for @%s to guess: `!word <secret>`", c.to)},
	}
}

func (b *Bot) word(ctx context.Context, m Message, secret string) []Reply {
	var c *challenge
	for _, x := range b.challenges {
		if x.from == m.User && x.accepted {
			c = x
			break
		}
	}
	if c == nil {
		return []Reply{{To: m.User, Text: "You have no accepted Hangman challenge"}}
	}
	if !m.Private {
		// The secret is now public; the challenge cannot be played.
		delete(b.challenges, c.to)
		return []Reply{{Channel: m.Channel, Text: fmt.Sprintf(
			"@%s, the word must be sent privately. Challenge to @%s cancelled", m.User, c.to)}}
	}
	if _, ok := b.instances[c.to]; ok {
		delete(b.challenges, c.to)
		return []Reply{{To: m.User, Text: fmt.Sprintf(
			"@%s is already playing Hangman. Challenge to @%s cancelled", c.to, c.to)}}
	}
	s := b.sessionFor(c.to)
	if _, err := s.Start(ctx, secret); err != nil {
		return []Reply{{To: m.User, Text: fmt.Sprintf("That word can't be played (%v), try another", err)}}
	}
	delete(b.challenges, c.to)
	inst := &instance{player: c.to, host: c.from, channel: c.channel, session: s}
	b.instances[c.to] = inst
	log.Info().Str("user", c.to).Str("host", c.from).Str("gameId", s.Current().ID()).Msg("chatbot: challenge started")
	return []Reply{
		{Channel: c.channel, Text: b.board(inst, "Enter a guess to start")},
		{To: m.User, Text: fmt.Sprintf("Game started in #%s", c.channel)},
	}
}

func (b *Bot) quit(m Message) []Reply {
	if inst, ok := b.instances[m.User]; ok {
		return []Reply{{Channel: inst.channel, Text: b.end(inst, "")}}
	}
	for to, c := range b.challenges {
		if c.from == m.User || c.to == m.User {
			delete(b.challenges, to)
			return []Reply{{Channel: c.channel, Text: fmt.Sprintf(
				"Hangman challenge from @%s to @%s cancelled", c.from, c.to)}}
		}
	}
	return []Reply{{Channel: m.Channel, To: privateTo(m), Text: "You have no game of Hangman in progress"}}
}

func (b *Bot) guess(m Message, text string) []Reply {
	inst, ok := b.instances[m.User]
	if !ok || m.Private || inst.channel != m.Channel {
		return nil
	}
	g := inst.session.Current()
	n := utf8.RuneCountInString(game.Normalize(text))
	if n != 1 && n != utf8.RuneCountInString(g.Word()) {
		return nil
	}
	if g.HasGuessed(text) {
		return []Reply{{Channel: inst.channel, Text: b.board(inst, fmt.Sprintf("You already guessed `%s`", strings.ToUpper(text)))}}
	}

	var (
		out game.Outcome
		err error
	)
	if n == 1 {
		out, err = g.Guess(text)
	} else {
		out, err = g.GuessWord(text)
	}
	if err != nil {
		// Not a letter, or a word of the right length with no letters.
		return nil
	}
	h := g.History()
	feedback := render.Feedback(text, out, h[len(h)-1].Revealed)
	if g.Status().Finished() {
		return []Reply{{Channel: inst.channel, Text: b.end(inst, feedback)}}
	}
	return []Reply{{Channel: inst.channel, Text: b.board(inst, feedback)}}
}

// end stops inst's game (a game still in progress is lost), forgets it
// and returns the final board.
func (b *Bot) end(inst *instance, feedback string) string {
	g := inst.session.Current()
	g.Resign()
	text := b.board(inst, feedback) + "\n\n" + render.Summary(g)
	inst.session.Stop()
	delete(b.instances, inst.player)
	log.Info().Str("user", inst.player).Str("gameId", g.ID()).Str("status", g.Status().String()).Msg("chatbot: game over")
	return text
}

func (b *Bot) board(inst *instance, feedback string) string {
	g := inst.session.Current()
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Hangman with %s**", inst.player)
	if inst.host != "" {
		fmt.Fprintf(&sb, " (word by %s)", inst.host)
	}
	fmt.Fprintf(&sb, "\n`%s`\n", strings.ToUpper(render.Spaced(g.Reveal())))
	fmt.Fprintf(&sb, "```\n%s\n```\n", render.GameGallows(g))
	if gs := render.Guesses(g); gs != "" {
		fmt.Fprintf(&sb, "Guesses: `%s`", gs)
	}
	if feedback != "" {
		sb.WriteString("\n\n" + feedback)
	}
	return sb.String()
}
