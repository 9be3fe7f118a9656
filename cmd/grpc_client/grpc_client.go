// Command grpc_client проверяет gRPC-сервер calllogd через стандартный
// health-сервис. Вызов попадает в журнал вызовов сервера с caller из
// metadata userID.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func main() {
	addr := flag.String("g", "localhost:3200", "gRPC server address")
	userID := flag.String("user", "12345", "caller id sent as userID metadata")
	service := flag.String("service", "", "health service name")
	flag.Parse()

	conn, err := grpc.NewClient(
		*addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Fatalf("failed to dial: %v", err)
	}
	log.Println("connection established")

	defer func(conn *grpc.ClientConn) {
		err := conn.Close()
		if err != nil {
			log.Println("connection close failed:", err)
		}
	}(conn)

	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	md := metadata.NewOutgoingContext(ctx, metadata.Pairs("userID", *userID))

	resp, err := client.Check(md, &healthpb.HealthCheckRequest{Service: *service})
	if err != nil {
		st, _ := status.FromError(err)
		log.Fatalf("health check failed: %s: %s", st.Code(), st.Message())
	}
	log.Println("Health status:", resp.GetStatus())
}
