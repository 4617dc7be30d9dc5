package handlers

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
	"github.com/LR-TechX/Ethereal-bot/internal/service"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

func (b *Bot) showExtraTasks(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	tasks, err := b.svc.AvailableTasks(chatID)
	if err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("task listing failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	if len(tasks) == 0 {
		b.editKeyboard(query, "No extra tasks available right now. Please check back later.", backToMenuKeyboard())
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(fmt.Sprintf("Join %s ($%g)", task.Type, task.Reward), task.Link),
			tgbotapi.NewInlineKeyboardButtonData("Verify", fmt.Sprintf("verify_task_%d", task.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")))
	b.editKeyboard(query, "Available extra tasks for today:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// chatRefFromLink extracts the @username a join link points at.
func chatRefFromLink(link string) string {
	parts := strings.Split(link, "/")
	ref := parts[len(parts)-1]
	if !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}
	return ref
}

func (b *Bot) handleVerifyTask(query *tgbotapi.CallbackQuery, taskID int64) {
	chatID := query.From.ID
	task, err := b.svc.Task(taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.answer(query.ID, "Task not found.")
			return
		}
		b.answer(query.ID, "An error occurred. Please try again.")
		return
	}

	switch task.Type {
	case models.TaskJoinGroup, models.TaskJoinChannel:
		member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				SuperGroupUsername: chatRefFromLink(task.Link),
				UserID:             chatID,
			},
		})
		if err != nil {
			b.log.WithField("task_id", taskID).WithError(err).Error("membership check failed")
			b.answer(query.ID, "Error verifying task. Try again later.")
			return
		}
		switch member.Status {
		case "member", "administrator", "creator":
			reward, err := b.svc.CompleteTask(chatID, taskID)
			if errors.Is(err, service.ErrTaskCompleted) {
				b.answer(query.ID, "You already completed this task.")
				return
			}
			if err != nil {
				b.answer(query.ID, "An error occurred. Please try again.")
				return
			}
			b.answer(query.ID, fmt.Sprintf("Task completed! You earned $%g.", reward))
		default:
			b.answer(query.ID, "You are not in the group/channel yet.")
		}
	case models.TaskExternal:
		b.sessions.Expect(chatID, session.Expectation{Kind: session.ExpectTaskScreenshot, TaskID: taskID})
		b.send(chatID, fmt.Sprintf("Please send the screenshot for task #%d verification.", taskID))
	}
}

func (b *Bot) handleTaskScreenshot(message *tgbotapi.Message, fileID string, taskID int64) {
	chatID := message.Chat.ID
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("approve_task_%d_%d", taskID, chatID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reject", fmt.Sprintf("reject_task_%d_%d", taskID, chatID)),
		),
	)
	b.sendPhoto(b.cfg.AdminID, fileID, fmt.Sprintf(
		"Task #%d verification from @%s (chat_id: %d)", taskID, displayName(message.From), chatID,
	), keyboard)
	b.send(chatID, "Screenshot received. Awaiting admin approval.")
}

// handleApproveTask credits the reward once; a second press for the same
// (task, user) pair changes nothing.
func (b *Bot) handleApproveTask(query *tgbotapi.CallbackQuery, taskID, userChatID int64) {
	reward, err := b.svc.CompleteTask(userChatID, taskID)
	if errors.Is(err, service.ErrTaskCompleted) {
		b.edit(query, "Task already approved.")
		return
	}
	if err != nil {
		b.log.WithFields(logrus.Fields{"task_id": taskID, "chat_id": userChatID}).
			WithError(err).Error("task approval failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	b.send(userChatID, fmt.Sprintf("Task approved! You earned $%g.", reward))
	b.edit(query, "Task approved and reward awarded.")
}

// handleRejectTask claws back an earlier approval. When the balance cannot
// cover the reward nothing is revoked; the admin is told so.
func (b *Bot) handleRejectTask(query *tgbotapi.CallbackQuery, taskID, userChatID int64) {
	revoked, _, err := b.svc.RejectTask(userChatID, taskID)
	if err != nil {
		b.log.WithFields(logrus.Fields{"task_id": taskID, "chat_id": userChatID}).
			WithError(err).Error("task rejection failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	if !revoked {
		b.edit(query, "Task rejected, but balance insufficient to revoke reward.")
		return
	}
	b.send(userChatID, "Task verification rejected. Reward revoked.")
	b.edit(query, "Task rejected and reward removed.")
}
