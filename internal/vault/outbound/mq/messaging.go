package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpdeck/internal/pkg/instrument"
	"github.com/shandysiswandi/otpdeck/internal/pkg/messaging"
	"github.com/shandysiswandi/otpdeck/internal/shared/event"
	"github.com/shandysiswandi/otpdeck/internal/vault/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishTokenRegistered(ctx context.Context, msg usecase.TokenRegisteredEvent) error {
	ctx, span := m.ins.Tracer("vault.outbound.mq").Start(ctx, "PublishTokenRegistered")
	defer span.End()

	body, err := json.Marshal(event.VaultTokenRegisteredMessage{
		TokenID: msg.TokenID,
		Label:   msg.Label,
		Issuer:  msg.Issuer,
		Source:  msg.Source,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.VaultTokenRegisteredDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishImportCompleted(ctx context.Context, msg usecase.ImportCompletedEvent) error {
	ctx, span := m.ins.Tracer("vault.outbound.mq").Start(ctx, "PublishImportCompleted")
	defer span.End()

	body, err := json.Marshal(event.VaultImportCompletedMessage{
		Imported: msg.Imported,
		Skipped:  msg.Skipped,
		TokenIDs: msg.TokenIDs,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.VaultImportCompletedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
