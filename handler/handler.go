package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/SalieeriW/FIB-NETFLIX/dto"
	"github.com/SalieeriW/FIB-NETFLIX/service"
)

type ServiceDependencies struct {
	TranscodeService service.TranscodeService
	CourseService    service.CourseService
}

func TranscodeHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var message dto.TranscodeMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal transcode message")
		return err
	}

	return deps.TranscodeService.Process(ctx, message)
}

func CourseHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var message dto.CourseMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal course message")
		return err
	}

	return deps.CourseService.Process(ctx, message)
}
