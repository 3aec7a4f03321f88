package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/core/telegram/format"
	"github.com/m3rciful/pixbot/core/telegram/helpers"
	"github.com/m3rciful/pixbot/internal/models"
)

// renderResult shows the session's current result. Every category goes
// through here; only the media wrapper differs. When replace is true the
// previous message is deleted first so the pager reads as one moving card.
func renderResult(c tele.Context, sess *models.Session, withNav bool, replace bool) error {
	if sess == nil || sess.Index < 0 || sess.Index >= len(sess.Results) {
		return helpers.SendMD(c, textNoResults)
	}
	r := sess.Results[sess.Index]

	caption := buildCaption(sess, &r)
	var markup *tele.ReplyMarkup
	if withNav {
		markup = pagerKeyboard(sess.Index, len(sess.Results))
	}

	if replace {
		if err := c.Delete(); err != nil {
			logger.TG.Debug("stale message delete failed",
				slog.String("event", "render.delete"),
				slog.String("err", err.Error()),
			)
		}
	}

	media := resultMedia(sess.Category, &r, caption)
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	if media == nil {
		return c.Send(caption+"\n\n"+r.PageURL, opts)
	}
	if err := c.Send(media, opts); err != nil {
		// Telegram refuses some provider URLs; a text card still works.
		logger.TG.Warn("media send failed",
			slog.String("event", "render.media"),
			slog.String("category", string(sess.Category)),
			slog.String("err", err.Error()),
		)
		return c.Send(caption+"\n\n"+r.PageURL, opts)
	}
	return nil
}

func resultMedia(cat models.Category, r *models.Result, caption string) any {
	switch cat {
	case models.CategoryVideo:
		if r.VideoURL == "" {
			return nil
		}
		return &tele.Video{File: tele.FromURL(r.VideoURL), Caption: caption}
	case models.CategoryMusic:
		if r.AudioURL == "" {
			return nil
		}
		return &tele.Audio{File: tele.FromURL(r.AudioURL), Caption: caption}
	case models.CategoryGif:
		if r.ImageURL == "" {
			return nil
		}
		return &tele.Animation{File: tele.FromURL(r.ImageURL), Caption: caption}
	default:
		if r.ImageURL == "" {
			return nil
		}
		return &tele.Photo{File: tele.FromURL(r.ImageURL), Caption: caption}
	}
}

func buildCaption(sess *models.Session, r *models.Result) string {
	var b strings.Builder

	tags := r.Tags
	if escaped, err := format.EscapeMarkdown(tags, format.MarkdownV1, ""); err == nil {
		tags = escaped
	}
	if tags != "" {
		fmt.Fprintf(&b, "*%s*\n", tags)
	}

	fmt.Fprintf(&b, "👁 %d", r.Views)
	if r.Likes > 0 {
		fmt.Fprintf(&b, "  ❤️ %d", r.Likes)
	}
	if r.Downloads > 0 {
		fmt.Fprintf(&b, "  ⬇️ %d", r.Downloads)
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "  ⏱ %d:%02d", r.Duration/60, r.Duration%60)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%d/%d · %s", sess.Index+1, len(sess.Results), categoryLabel(sess.Category))
	if r.PageURL != "" {
		fmt.Fprintf(&b, "\n[source](%s)", r.PageURL)
	}
	return b.String()
}
