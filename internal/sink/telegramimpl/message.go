package telegramimpl

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/bradenhilton/gdl-extractors/internal/extractor"
	"github.com/bradenhilton/gdl-extractors/pkg/retry"
)

var videoExtensions = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"m3u8": true,
	"webm": true,
}

func (tg *TelegramImpl) channelName() string {
	return "@" + tg.Config.Telegram.Channel
}

// Directory announces a resolved post to the channel as a text header.
func (tg *TelegramImpl) Directory(ctx context.Context, meta extractor.Metadata) error {
	header := directoryHeader(meta)
	if header == "" {
		return nil
	}

	return retry.Do(ctx, tg.Logger, "telegram.directory", func() error {
		msg := tgbotapi.NewMessageToChannel(tg.channelName(), header)
		_, err := tg.TgBot.Send(msg)
		return err
	}, retry.DefaultConfig())
}

// File sends one media item. Indirect URLs (third-party embeds) cannot
// be fetched by Telegram and go out as plain links.
func (tg *TelegramImpl) File(ctx context.Context, file extractor.FileDescriptor, meta extractor.Metadata) error {
	tg.Logger.Info("Sending media to channel",
		"channel", tg.channelName(),
		"url", file.URL,
		"num", file.Num)

	return retry.Do(ctx, tg.Logger, "telegram.file", func() error {
		var err error
		switch {
		case file.Indirect:
			msg := tgbotapi.NewMessageToChannel(tg.channelName(), file.URL)
			_, err = tg.TgBot.Send(msg)
		case videoExtensions[file.Extension]:
			video := tgbotapi.NewVideo(0, tgbotapi.FileURL(file.URL))
			video.ChannelUsername = tg.channelName()
			_, err = tg.TgBot.Send(video)
		default:
			photo := tgbotapi.NewPhotoToChannel(tg.channelName(), tgbotapi.FileURL(file.URL))
			_, err = tg.TgBot.Send(photo)
		}
		return err
	}, retry.DefaultConfig())
}

func directoryHeader(meta extractor.Metadata) string {
	title, _ := meta["title"].(string)
	postURL, _ := meta["post_url"].(string)

	switch {
	case title != "" && postURL != "":
		return fmt.Sprintf("%s\n%s", title, postURL)
	case title != "":
		return title
	default:
		return postURL
	}
}
