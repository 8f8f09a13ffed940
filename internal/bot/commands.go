package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/grading"
	"github.com/shrimpsizemoose/semla/internal/models"
)

const (
	studentHelp = `Доступные команды:
/link <email> - Привязать телеграм к аккаунту портала
/token - Получить токен для доступа к API
/grades - Показать мои оценки
/help - Показать это сообщение`

	adminHelp = `Доступные команды:
/link <email> - Привязать телеграм к аккаунту портала
/token - Получить токен для доступа к API
/grades - Показать мои оценки
/promote <email> - Сделать студента преподавателем
/demote <email> - Вернуть преподавателя в студенты
/stats - Статистика портала
/help - Показать это сообщение

Примеры:
/link jane.doe@example.edu
/promote jane.doe@example.edu`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeStudentCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":  b.handleStart,
		"link":   b.handleLink,
		"token":  b.handleToken,
		"grades": b.handleGrades,
		"help":   b.handleHelp,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"promote": b.handlePromote,
		"demote":  b.handleDemote,
		"stats":   b.handleStats,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeStudentCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = studentHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Используйте команды для взаимодействия с ботом. Отправьте /help для списка команд.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Привет! Я помогу тебе со сдачей заданий.\n\n"
	if b.admins[msg.From.ID] {
		text += "Ты администратор портала. Используй /help для списка команд."
	} else {
		text += "Используй /link <email> чтобы привязать аккаунт, затем /token для токена."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleLink(msg *tgbotapi.Message) error {
	ctx := context.Background()

	email := strings.TrimSpace(msg.CommandArguments())
	if email == "" {
		return b.sendMessage(msg.Chat.ID, "Использование: /link <email>")
	}

	user, err := b.store.GetUserByEmail(strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("ошибка поиска пользователя: %v", err)
	}
	if user == nil {
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Пользователь %s не найден. Обратись к администратору.", email))
	}

	key := fmt.Sprintf(linkKeyTpl, msg.From.ID)
	if err := b.redis.Set(ctx, key, user.ID, 0).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения привязки: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Аккаунт %s привязан. Теперь можно получить токен: /token", user.Email))
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	ctx := context.Background()

	userID, err := b.linkedUserID(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	if userID == "" {
		return b.sendMessage(msg.Chat.ID, "Сначала привяжи аккаунт: /link <email>")
	}

	user, err := b.store.GetUser(userID)
	if err != nil || user == nil {
		return fmt.Errorf("ошибка получения пользователя: %v", err)
	}

	role, err := b.store.GetUserRole(userID)
	if err != nil {
		return fmt.Errorf("ошибка получения роли: %v", err)
	}

	token, err := b.sessions.Create(ctx, user, role)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %v", err)
	}

	ttl := time.Duration(b.config.Auth.SessionTTLHours) * time.Hour
	return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"Твой токен (действует %s):\n\n%s\n\nПередавай его в заголовке Authorization: Bearer <token>",
		ttl, token,
	))
}

func (b *Bot) handleGrades(msg *tgbotapi.Message) error {
	ctx := context.Background()

	userID, err := b.linkedUserID(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	if userID == "" {
		return b.sendMessage(msg.Chat.ID, "Сначала привяжи аккаунт: /link <email>")
	}

	subs, err := b.store.ListSubmissionsByStudent(userID)
	if err != nil {
		return fmt.Errorf("ошибка получения оценок: %v", err)
	}

	if len(subs) == 0 {
		return b.sendMessage(msg.Chat.ID, "Сданных работ пока нет")
	}

	var text strings.Builder
	text.WriteString("Твои работы:\n\n")
	for _, sub := range subs {
		submitted := time.Unix(sub.SubmissionDate, 0)
		text.WriteString(fmt.Sprintf("📝 %s\n📅 %s UTC\n",
			sub.AssignmentTitle,
			submitted.UTC().Format("2006-Jan-02 Mon 15:04"),
		))
		if sub.Status == models.StatusGraded {
			text.WriteString(fmt.Sprintf("✅ Оценка: %s\n", sub.Grade))
			if sub.Feedback != "" {
				text.WriteString(fmt.Sprintf("💬 %s\n", sub.Feedback))
			}
		} else {
			text.WriteString(fmt.Sprintf("⏳ Статус: %s\n", grading.DisplayStatus(&sub.Submission)))
		}
		text.WriteString("\n")
	}

	return b.sendMessage(msg.Chat.ID, text.String())
}

func (b *Bot) handlePromote(msg *tgbotapi.Message) error {
	return b.changeRole(msg, models.RoleStudent, models.RoleTeacher, "теперь преподаватель")
}

func (b *Bot) handleDemote(msg *tgbotapi.Message) error {
	return b.changeRole(msg, models.RoleTeacher, models.RoleStudent, "снова студент")
}

func (b *Bot) changeRole(msg *tgbotapi.Message, from, to, verb string) error {
	email := strings.TrimSpace(msg.CommandArguments())
	if email == "" {
		return b.sendMessage(msg.Chat.ID, "Использование: /promote <email> или /demote <email>")
	}

	user, err := b.store.GetUserByEmail(strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("ошибка поиска пользователя: %v", err)
	}
	if user == nil {
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Пользователь %s не найден", email))
	}

	role, err := b.store.GetUserRole(user.ID)
	if err != nil {
		return fmt.Errorf("ошибка получения роли: %v", err)
	}
	if role == models.RoleAdmin {
		return b.sendMessage(msg.Chat.ID, "Роль администратора менять нельзя")
	}
	if role != from {
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("У пользователя %s роль %s, ожидалась %s", email, role, from))
	}

	if err := b.store.SetUserRole(user.ID, to); err != nil {
		return fmt.Errorf("ошибка смены роли: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ %s %s", user.Email, verb))
}

func (b *Bot) handleStats(msg *tgbotapi.Message) error {
	stats, err := b.store.FetchDashboardStats()
	if err != nil {
		return fmt.Errorf("ошибка получения статистики: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"Статистика портала:\n\n👥 Пользователи: %d\n📚 Задания: %d\n📝 Сдачи: %d",
		stats.Users,
		stats.Assignments,
		stats.Submissions,
	))
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
