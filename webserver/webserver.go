package webserver

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"

	cnt "github.com/R3DPanda1/LWN-PHY-Sim/controllers"
	"github.com/R3DPanda1/LWN-PHY-Sim/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator"
	devModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	gwModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
	"github.com/R3DPanda1/LWN-PHY-Sim/socket"
)

// connSubscriptions holds the active event stream unsubscribe functions for a single socket connection.
type connSubscriptions struct {
	mu    sync.Mutex
	funcs []func()
}

// WebServer represents a web server configuration including address, port, router setup, and server socket.
type WebServer struct {
	Address      string           // Address of the web server
	Port         int              // Port of the web server
	Router       *gin.Engine      // Router of the web server
	ServerSocket *socketio.Server // ServerSocket of the web server
}

// Global variables
var (
	simulatorController cnt.SimulatorController // simulatorController is an instance of the cSimulatorController interface for managing simulator operations.
	configuration       *models.ServerConfig    // configuration is a pointer to models.ServerConfig struct which holds the server's configuration settings.
	// socketSubscriptions tracks active event stream unsubscribe functions per socket connection.
	socketSubscriptions sync.Map // map[string][]func() keyed by socket ID
)

// idRequest selects a device or a gateway by id.
type idRequest struct {
	Id int `json:"id"`
}

// tickRequest advances the virtual clock by a duration such as "1s" or "250ms".
type tickRequest struct {
	Duration string `json:"duration"`
}

// NewWebServer creates a new web server instance with the given configuration and simulator controller.
func NewWebServer(config *models.ServerConfig, controller cnt.SimulatorController) *WebServer {
	// Storing the configuration and controller instances in the global variables.
	configuration = config
	simulatorController = controller
	serverSocket := newServerSocket()
	// Start the server socket in a separate goroutine due to its blocking nature.
	// If an error occurs, log it and terminate the program.
	go func() {
		err := serverSocket.Serve()
		if err != nil {
			log.Fatal(fmt.Errorf("[WS] [ERROR] [SERVERSOCKET]: %w", err))
		}
	}()
	// Initialize the Gin router and setting up the CORS configuration.
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	configCors := cors.DefaultConfig()
	configCors.AllowAllOrigins = true
	configCors.AllowHeaders = []string{"Origin", "Access-Control-Allow-Origin",
		"Access-Control-Allow-Headers", "Content-type"}
	configCors.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	configCors.AllowCredentials = true
	router.Use(cors.New(configCors))
	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())
	ws := WebServer{
		Address:      configuration.Address,
		Port:         configuration.Port,
		Router:       router,
		ServerSocket: serverSocket,
	}
	// Set up the API routes.
	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/start", startSimulator)                             // Start the simulator
		apiRoutes.GET("/stop", stopSimulator)                               // Stop the simulator
		apiRoutes.GET("/status", simulatorStatus)                           // Get the simulator status
		apiRoutes.GET("/gateways", getGateways)                             // Get the list of gateways
		apiRoutes.GET("/devices", getDevices)                               // Get the list of devices
		apiRoutes.POST("/add-device", addDevice)                            // Add a new device
		apiRoutes.POST("/del-device", deleteDevice)                         // Delete a device
		apiRoutes.POST("/add-gateway", addGateway)                          // Add a new gateway
		apiRoutes.POST("/del-gateway", deleteGateway)                       // Delete a gateway
		apiRoutes.POST("/send-uplink", sendUplink)                          // Transmit from a device
		apiRoutes.POST("/send-downlink", sendDownlink)                      // Transmit from a gateway to a device
		apiRoutes.POST("/change-location", changeLocation)                  // Move a device
		apiRoutes.POST("/step-device", stepDevice)                          // Walk a device one cell toward a waypoint
		apiRoutes.GET("/waypoints", getWayPoints)                           // Get the waypoints
		apiRoutes.POST("/add-waypoint", addWayPoint)                        // Add a waypoint
		apiRoutes.POST("/tick", tick)                                       // Advance the virtual clock
		apiRoutes.GET("/gateway/:id/transmissions", getGatewayTransmissions) // Drain the frames collected by a gateway
		apiRoutes.POST("/reset", resetSimulator)                            // Rewind the simulation
		apiRoutes.POST("/add-run", addRun)                                  // Count a new run
	}
	// Set up the WebSocket routes.
	router.GET("/socket.io/*any", gin.WrapH(serverSocket))
	router.POST("/socket.io/*any", gin.WrapH(serverSocket))
	return &ws
}

// newServerSocket creates a new server socket instance and sets up the socket events.
func newServerSocket() *socketio.Server {
	serverSocket := socketio.NewServer(nil)
	serverSocket.OnConnect("/", func(s socketio.Conn) error {
		slog.Debug("socket connected", "component", "webserver", "socket_id", s.ID())
		s.SetContext("")
		return nil
	})
	serverSocket.OnDisconnect("/", func(s socketio.Conn, reason string) {
		cleanupSocketSubscriptions(s.ID())
		serverSocket.Remove(s.ID())
		_ = s.Close()
	})
	serverSocket.OnEvent("/", socket.EventSendUplink, func(s socketio.Conn, data socket.NewPayload) string {
		_, _, err := simulatorController.SendUplink(data)
		return errorString(err)
	})
	serverSocket.OnEvent("/", socket.EventSendDownlink, func(s socketio.Conn, data socket.Downlink) string {
		_, err := simulatorController.SendDownlink(data)
		return errorString(err)
	})
	serverSocket.OnEvent("/", socket.EventChangeLocation, func(s socketio.Conn, info socket.NewLocation) bool {
		return simulatorController.ChangeLocation(info) == nil
	})
	serverSocket.OnEvent("/", socket.EventStepDevice, func(s socketio.Conn, st socket.StepDevice) string {
		_, err := simulatorController.StepDevice(st)
		return errorString(err)
	})

	// Event stream subscriptions
	serverSocket.OnEvent("/", socket.EventStreamDeviceEvents, func(s socketio.Conn, req socket.StreamRequest) {
		stream(s, events.DeviceTopic(req.DevEUI), socket.EventDeviceEvent)
	})
	serverSocket.OnEvent("/", socket.EventStopDeviceEvents, func(s socketio.Conn, req socket.StreamRequest) {
		cleanupSocketSubscriptions(s.ID())
	})
	serverSocket.OnEvent("/", socket.EventStreamGatewayEvents, func(s socketio.Conn, req socket.StreamRequest) {
		stream(s, events.GatewayTopic(req.GatewayMAC), socket.EventGatewayEvent)
	})
	serverSocket.OnEvent("/", socket.EventStopGatewayEvents, func(s socketio.Conn, req socket.StreamRequest) {
		cleanupSocketSubscriptions(s.ID())
	})
	serverSocket.OnEvent("/", socket.EventStreamSystemEvents, func(s socketio.Conn) {
		stream(s, events.SystemTopic, socket.EventSystemEvent)
	})

	return serverSocket
}

// stream sends the history of topic, then forwards live events until the subscription ends.
func stream(s socketio.Conn, topic, eventName string) {
	broker := simulatorController.GetEventBroker()
	if broker == nil {
		return
	}
	ch, history, unsub := broker.Subscribe(topic)
	addSocketSubscription(s.ID(), unsub)

	// Send history first
	for _, evt := range history {
		s.Emit(eventName, evt)
	}

	// Forward live events
	go func() {
		for evt := range ch {
			s.Emit(eventName, evt)
		}
	}()
}

func addSocketSubscription(socketID string, unsub func()) {
	val, _ := socketSubscriptions.LoadOrStore(socketID, &connSubscriptions{})
	entry := val.(*connSubscriptions)
	entry.mu.Lock()
	entry.funcs = append(entry.funcs, unsub)
	entry.mu.Unlock()
}

func cleanupSocketSubscriptions(socketID string) {
	val, ok := socketSubscriptions.LoadAndDelete(socketID)
	if !ok {
		return
	}
	entry := val.(*connSubscriptions)
	entry.mu.Lock()
	for _, fn := range entry.funcs {
		fn()
	}
	entry.funcs = nil
	entry.mu.Unlock()
}

// Run starts the web server and listens on the given address and port.
func (ws *WebServer) Run() {
	fullAddress := ws.Address + ":" + strconv.Itoa(ws.Port)
	slog.Info("web server listening", "component", "webserver", "address", fullAddress)
	err := ws.Router.Run(fullAddress)
	// If an error occurs, log it and terminate the program.
	if err != nil {
		log.Fatal(fmt.Errorf("[WS] [ERROR]: %w", err))
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// httpStatus maps the simulator sentinel errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, simulator.ErrDeviceNotFound), errors.Is(err, simulator.ErrGatewayNotFound),
		errors.Is(err, simulator.ErrWayPointNotFound):
		return http.StatusNotFound
	case errors.Is(err, radio.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "Invalid request"})
}

// --- API Handlers ---
// startSimulator starts the simulator
func startSimulator(c *gin.Context) {
	c.JSON(http.StatusOK, simulatorController.Run())
}

// stopSimulator stops the simulator
func stopSimulator(c *gin.Context) {
	c.JSON(http.StatusOK, simulatorController.Stop())
}

// simulatorStatus returns the status of the simulator
func simulatorStatus(c *gin.Context) {
	c.JSON(http.StatusOK, simulatorController.Status())
}

// getGateways returns the list of gateways
func getGateways(c *gin.Context) {
	c.JSON(http.StatusOK, simulatorController.GetGateways())
}

// getDevices returns the list of devices
func getDevices(c *gin.Context) {
	c.JSON(http.StatusOK, simulatorController.GetDevices())
}

// addGateway adds a new gateway
func addGateway(c *gin.Context) {
	var info gwModels.InfoGateway
	if err := c.BindJSON(&info); err != nil {
		badRequest(c)
		return
	}
	id, err := simulatorController.AddGateway(info)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

// deleteGateway deletes a gateway
func deleteGateway(c *gin.Context) {
	var req idRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := simulatorController.DeleteGateway(req.Id); err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// addDevice adds a new device
func addDevice(c *gin.Context) {
	var info devModels.InformationDevice
	if err := c.BindJSON(&info); err != nil {
		badRequest(c)
		return
	}
	id, err := simulatorController.AddDevice(info)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

// deleteDevice deletes a device
func deleteDevice(c *gin.Context) {
	var req idRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := simulatorController.DeleteDevice(req.Id); err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sendUplink transmits a payload from a device at the current simulated time
func sendUplink(c *gin.Context) {
	var pl socket.NewPayload
	if err := c.BindJSON(&pl); err != nil {
		badRequest(c)
		return
	}
	tx, queued, err := simulatorController.SendUplink(pl)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "queued": queued, "delivered": tx != nil, "transmission": tx})
}

// sendDownlink transmits a payload from a gateway to a device
func sendDownlink(c *gin.Context) {
	var dl socket.Downlink
	if err := c.BindJSON(&dl); err != nil {
		badRequest(c)
		return
	}
	tx, err := simulatorController.SendDownlink(dl)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "delivered": tx != nil, "transmission": tx})
}

// changeLocation moves a device to another cell
func changeLocation(c *gin.Context) {
	var l socket.NewLocation
	if err := c.BindJSON(&l); err != nil {
		badRequest(c)
		return
	}
	if err := simulatorController.ChangeLocation(l); err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// stepDevice walks a device one cell toward a waypoint
func stepDevice(c *gin.Context) {
	var st socket.StepDevice
	if err := c.BindJSON(&st); err != nil {
		badRequest(c)
		return
	}
	moved, err := simulatorController.StepDevice(st)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "moved": moved})
}

// getWayPoints returns the waypoints devices can walk toward
func getWayPoints(c *gin.Context) {
	points := simulatorController.GetWayPoints()
	if points == nil {
		points = []location.Location{}
	}
	c.JSON(http.StatusOK, points)
}

// addWayPoint registers a waypoint
func addWayPoint(c *gin.Context) {
	var p location.Location
	if err := c.BindJSON(&p); err != nil {
		badRequest(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": simulatorController.AddWayPoint(p)})
}

// tick advances the virtual clock by hand
func tick(c *gin.Context) {
	var req tickRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil || d <= 0 {
		badRequest(c)
		return
	}
	fired := simulatorController.Tick(d)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "fired": fired, "simTime": simulatorController.Status().SimTime})
}

// getGatewayTransmissions drains the frames a gateway received since the last call
func getGatewayTransmissions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c)
		return
	}
	txs, err := simulatorController.Transmissions(id)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"status": err.Error()})
		return
	}
	if txs == nil {
		txs = []radio.Transmission{}
	}
	c.JSON(http.StatusOK, txs)
}

// resetSimulator rewinds the clock and clears every counter
func resetSimulator(c *gin.Context) {
	simulatorController.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// addRun counts a new run on the current configuration
func addRun(c *gin.Context) {
	simulatorController.AddRun()
	c.JSON(http.StatusOK, simulatorController.Status())
}
