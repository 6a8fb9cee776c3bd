// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package dispatch

import (
	"context"

	"github.com/lukasdietrich/briefpost/internal/models"
)

// Dispatcher runs the operations of a Pipeline on a Worker. Every method returns
// immediately, the outcome is delivered through the returned Future.
type Dispatcher struct {
	pipeline *Pipeline
	worker   *Worker
}

func NewDispatcher(pipeline *Pipeline, worker *Worker) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		worker:   worker,
	}
}

// DispatchSend submits Pipeline.Send.
func (d *Dispatcher) DispatchSend(ctx context.Context, message *models.Message, priority Priority) *Future {
	return d.worker.Submit(ctx, priority, func(ctx context.Context) error {
		return d.pipeline.Send(ctx, message)
	})
}

// HandleDraftHeaders submits Pipeline.HandleDraftHeaders.
func (d *Dispatcher) HandleDraftHeaders(ctx context.Context, message *models.Message) *Future {
	return d.worker.Submit(ctx, PriorityDefault, func(ctx context.Context) error {
		return d.pipeline.HandleDraftHeaders(ctx, message)
	})
}

// HandleSourceHeaders submits Pipeline.HandleSourceHeaders.
func (d *Dispatcher) HandleSourceHeaders(ctx context.Context, message *models.Message) *Future {
	return d.worker.Submit(ctx, PriorityDefault, func(ctx context.Context) error {
		return d.pipeline.HandleSourceHeaders(ctx, message)
	})
}

// UnsubscribeFolder submits Pipeline.UnsubscribeFolder.
func (d *Dispatcher) UnsubscribeFolder(ctx context.Context, uri string) *Future {
	return d.worker.Submit(ctx, PriorityDefault, func(ctx context.Context) error {
		return d.pipeline.UnsubscribeFolder(ctx, uri)
	})
}

// Close shuts down the worker, see Worker.Close.
func (d *Dispatcher) Close(ctx context.Context) error {
	return d.worker.Close(ctx)
}
