// Package camundatest provides a worker.JobClient that records the commands
// a job handler sends instead of talking to a broker.
package camundatest

import (
	"context"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

type CommandKind string

const (
	CommandComplete CommandKind = "complete"
	CommandFail     CommandKind = "fail"
	CommandThrow    CommandKind = "throw"
)

// Sent is one command as the gateway received it. CtxErr is the state of
// the send context at that moment; a real gateway rejects a dead context.
type Sent struct {
	Kind         CommandKind
	JobKey       int64
	Retries      int32
	ErrorCode    string
	ErrorMessage string
	Variables    string
	CtxErr       error
}

type JobClient struct {
	mu   sync.Mutex
	sent []Sent
}

func NewJobClient() *JobClient {
	return &JobClient{}
}

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(gateway{c: c}, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(gateway{c: c}, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(gateway{c: c}, noRetry)
}

// Sent returns a copy of every command received so far.
func (c *JobClient) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

func (c *JobClient) record(ctx context.Context, s Sent) error {
	s.CtxErr = ctx.Err()
	c.mu.Lock()
	c.sent = append(c.sent, s)
	c.mu.Unlock()
	return s.CtxErr
}

func noRetry(context.Context, error) bool { return false }

// gateway implements the three job RPCs; any other call panics on the nil
// embedded client.
type gateway struct {
	pb.GatewayClient
	c *JobClient
}

func (g gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	if err := g.c.record(ctx, Sent{Kind: CommandComplete, JobKey: in.JobKey, Variables: in.Variables}); err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	err := g.c.record(ctx, Sent{
		Kind:         CommandFail,
		JobKey:       in.JobKey,
		Retries:      in.Retries,
		ErrorMessage: in.ErrorMessage,
		Variables:    in.Variables,
	})
	if err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	err := g.c.record(ctx, Sent{
		Kind:         CommandThrow,
		JobKey:       in.JobKey,
		ErrorCode:    in.ErrorCode,
		ErrorMessage: in.ErrorMessage,
		Variables:    in.Variables,
	})
	if err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}
