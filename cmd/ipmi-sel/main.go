package main

// ipmi-sel reads or clears a BMC's System Event Log.

import (
	"context"
	"log"
	"time"

	"github.com/ironbmc/bmc"
	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/alecthomas/kingpin"
)

var (
	argBMCAddr = kingpin.Arg("addr", "IP[:port] of the BMC to read.").
			Required().
			String()
	flgUsername = kingpin.Flag("username", "The username to connect as.").
			Required().
			String()
	flgPassword = kingpin.Flag("password", "The password of the user to connect as.").
			Required().
			String()
	flgClear = kingpin.Flag("clear", "Erase the log instead of reading it.").
			Bool()
)

func main() {
	kingpin.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
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

	if *flgClear {
		if err := sess.ClearSEL(ctx); err != nil {
			log.Fatal(err)
		}
		log.Print("SEL cleared")
		return
	}

	info, err := sess.GetSELInfo(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d entries, %d bytes free", info.Entries, info.FreeSpaceBytes)

	err = sess.SELEntries(ctx, func(e *ipmi.SELEntry) error {
		switch ipmi.ClassifyRecordType(e.RecordType) {
		case ipmi.SELEventTypeSystemEvent:
			log.Printf("record %d: %v sensor %d/%d event type 0x%02x data %x",
				e.RecordID, e.Timestamp.Format(time.RFC3339), e.SensorType, e.SensorNumber, e.EventType, e.EventData)
		default:
			log.Printf("record %d: OEM record type 0x%02x data %x", e.RecordID, e.RecordType, e.Data)
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}
