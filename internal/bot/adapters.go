package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// The gate, admin and broadcast services take their Telegram collaborators
// per call; these adapters build them from the live bot instance.

type teleMembership struct {
	bot tele.API
}

func (m teleMembership) MemberStatus(_ context.Context, channelID int64, userID int64) (string, error) {
	member, err := m.bot.ChatMemberOf(&tele.Chat{ID: channelID}, &tele.User{ID: userID})
	if err != nil {
		return "", err
	}
	return string(member.Role), nil
}

type teleResolver struct {
	bot tele.API
}

func (r teleResolver) ResolveChannel(_ context.Context, handle string) (int64, error) {
	chat, err := r.bot.ChatByUsername("@" + handle)
	if err != nil {
		return 0, err
	}
	return chat.ID, nil
}

type teleSender struct {
	bot tele.API
}

func (s teleSender) Send(_ context.Context, userID int64, text string) error {
	_, err := s.bot.Send(tele.ChatID(userID), text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	return err
}
