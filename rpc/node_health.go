package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"gpos_engine/config"
	"gpos_engine/logs"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/health/grpc_health_v1"
)

var (
	once sync.Once
	healthPool *MirrorHealthPool
)

// MirrorHealthClient probes one mirror node through the standard gRPC
// health service.
type MirrorHealthClient struct {
	nodeAddr string
	healthClient grpc_health_v1.HealthClient
	timeout  int
	conn *grpc.ClientConn
	valid bool
}

type MirrorHealthPool struct {
	lock sync.Mutex
	clientMap map[string]*MirrorHealthClient
}

func MirrorHealthPoolInstance() *MirrorHealthPool {
	logger := logs.GetLogger()
	once.Do(func() {
		if healthPool == nil {
			healthPool = &MirrorHealthPool{
				lock: sync.Mutex{},
			}
			addrList,err := config.GetMirrorHealthAddrList()
			tOut := config.GetHealthProbeTimeout()
			if err == nil {
				healthPool.clientMap = initHealthClients(addrList, tOut)
			} else {
				logger.Errorf("MirrorHealthPoolInstance: fail to get health address, the error is %v", err)
			}
		}
	})
	return healthPool
}

func initHealthClients(addrList []string, timeout int) map[string]*MirrorHealthClient {
	logger := logs.GetLogger()
	clientMap := make(map[string]*MirrorHealthClient)
	for _,addr := range addrList {
		cl,err := createHealthClient(addr, timeout)
		if err != nil {
			logger.Errorf("Fail to create mirror health client,the error is %v", err)
		}
		clientMap[addr] = cl
	}
	return clientMap
}

func createHealthClient(addr string, timeout int) (*MirrorHealthClient,error) {
	cl := &MirrorHealthClient{
		nodeAddr: addr,
		timeout: timeout,
		valid: true,
	}
	logger := logs.GetLogger()
	conn, err := grpc.Dial(addr, grpc.WithInsecure(),
		grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(grpc_retry.WithMax(2))))
	if err != nil {
		cl.valid = false
		logger.Errorf("createHealthClient: fail to dial mirror node, the error is %v", err)
		return cl,errors.New("fail to dial mirror node")
	}
	cl.healthClient = grpc_health_v1.NewHealthClient(conn)
	cl.conn = conn
	return cl,nil
}

func (pool *MirrorHealthPool) getClient(addr string) (*MirrorHealthClient,error) {
	pool.lock.Lock()
	defer pool.lock.Unlock()
	cl,ok := pool.clientMap[addr]
	if ok && cl.valid && cl.conn.GetState() != connectivity.Shutdown {
		return cl,nil
	}
	// connect this address again
	cl,err := createHealthClient(addr, config.GetHealthProbeTimeout())
	if err != nil {
		return nil,err
	}
	pool.clientMap[addr] = cl
	return cl,nil
}

// Check runs one health request against the node.
func (client *MirrorHealthClient) Check() (bool,error) {
	ctx,cancel := context.WithTimeout(context.Background(), time.Duration(client.timeout)*time.Second)
	defer cancel()
	res,err := client.healthClient.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return false,err
	}
	return res.Status == grpc_health_v1.HealthCheckResponse_SERVING,nil
}

// ProbeMirrorNode reports whether the mirror node behind addr answers the
// health service as SERVING. Any dial or probe failure counts as down.
func ProbeMirrorNode(addr string) bool {
	logger := logs.GetLogger()
	cl,err := MirrorHealthPoolInstance().getClient(addr)
	if err != nil {
		logger.Errorf("ProbeMirrorNode: no usable client for %v, the error is %v", addr, err)
		return false
	}
	ok,err := cl.Check()
	if err != nil {
		logger.Errorf("ProbeMirrorNode: health check of %v failed, the error is %v", addr, err)
		cl.valid = false
		return false
	}
	return ok
}
