package main

// chassis-control sends a chassis control command to a BMC (power on/off,
// cycle, reset, diagnostic interrupt, or graceful shutdown) and reports the
// chassis's power state afterward.

import (
	"context"
	"log"
	"time"

	"github.com/ironbmc/bmc"
	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/alecthomas/kingpin"
)

var (
	argBMCAddr = kingpin.Arg("addr", "IP[:port] of the BMC to control.").
			Required().
			String()
	argCommand = kingpin.Arg("command", "on, off, cycle, reset, interrupt, or softoff.").
			Required().
			Enum("on", "off", "cycle", "reset", "interrupt", "softoff")
	flgUsername = kingpin.Flag("username", "The username to connect as.").
			Required().
			String()
	flgPassword = kingpin.Flag("password", "The password of the user to connect as.").
			Required().
			String()

	controlsByName = map[string]ipmi.ChassisControl{
		"off":       ipmi.ChassisControlPowerDown,
		"on":        ipmi.ChassisControlPowerUp,
		"cycle":     ipmi.ChassisControlPowerCycle,
		"reset":     ipmi.ChassisControlHardReset,
		"interrupt": ipmi.ChassisControlDiagnosticInt,
		"softoff":   ipmi.ChassisControlSoftShutdown,
	}
)

func main() {
	kingpin.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	machine, err := bmc.Dial(ctx, *argBMCAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer machine.Close()

	log.Printf("connected to %v over IPMI v%v", machine.Address(), machine.Version())

	sess, err := machine.NewSession(ctx, &bmc.SessionOpts{
		Username:          *flgUsername,
		Password:          []byte(*flgPassword),
		MaxPrivilegeLevel: ipmi.PrivilegeLevelOperator,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close(ctx)

	// kingpin.Enum already rejected anything not in the map.
	if err := sess.ChassisControl(ctx, controlsByName[*argCommand]); err != nil {
		log.Fatalf("%s: %v", *argCommand, err)
	}
	log.Printf("%s accepted", *argCommand)

	reportStatus(ctx, sess)
}

// reportStatus prints the chassis's power state after a control command,
// best-effort: a system that was just told to power off or reset may not
// answer a status query in time, and that's not itself an error worth
// failing the command over.
func reportStatus(ctx context.Context, sess *bmc.Session) {
	status, err := sess.GetChassisStatus(ctx)
	if err != nil {
		log.Printf("chassis status unavailable: %v", err)
		return
	}
	state := "off"
	if status.PowerIsOn {
		state = "on"
	}
	log.Printf("chassis power is now %s", state)
}
