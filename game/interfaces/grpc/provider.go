package grpc

import (
	"context"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/runtime/game/application/service"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const (
	ServiceName      = "okey.Game"
	CreateRoomMethod = "/okey.Game/CreateRoom"
)

// GameServiceServer okey.Game 服务端
type GameServiceServer interface {
	CreateRoom(ctx context.Context, req *service.CreateRoomReq) (*service.CreateRoomResp, error)
}

var gameServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "CreateRoom", Handler: createRoomHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "okey/game",
}

func createRoomHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(service.CreateRoomReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GameServiceServer).CreateRoom(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: CreateRoomMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GameServiceServer).CreateRoom(ctx, req.(*service.CreateRoomReq))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterGameServer(s gogrpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&gameServiceDesc, srv)
}

type GameServer struct {
	gameService service.GameService
}

func NewGameServer(gameService service.GameService) *GameServer {
	return &GameServer{gameService: gameService}
}

// CreateRoom 座位表不合法等业务失败放在响应里，只有调用方超时或取消才返回 gRPC 错误
func (s *GameServer) CreateRoom(ctx context.Context, req *service.CreateRoomReq) (*service.CreateRoomResp, error) {
	resp, err := s.gameService.CreateRoom(ctx, req)
	if err != nil {
		log.Warn("gRPC CreateRoom 失败: %v", err)
		return nil, status.FromContextError(err).Err()
	}
	if !resp.Success {
		log.Info("gRPC CreateRoom 被拒绝: %s", resp.Message)
	}
	return resp, nil
}

// GameClient 外部撮合服务使用的客户端
type GameClient struct {
	cc gogrpc.ClientConnInterface
}

func NewGameClient(cc gogrpc.ClientConnInterface) *GameClient {
	return &GameClient{cc: cc}
}

func (c *GameClient) CreateRoom(ctx context.Context, in *service.CreateRoomReq, opts ...gogrpc.CallOption) (*service.CreateRoomResp, error) {
	out := new(service.CreateRoomResp)
	opts = append([]gogrpc.CallOption{gogrpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, CreateRoomMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
