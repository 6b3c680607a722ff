package main

// ipmi-sdr walks a BMC's sensor data record repository and prints each
// sensor's current reading alongside the record that describes it.

import (
	"context"
	"log"
	"time"

	"github.com/ironbmc/bmc"
	"github.com/ironbmc/bmc/pkg/ipmi"
	"github.com/ironbmc/bmc/pkg/layerexts"

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

	info, err := sess.GetSDRRepositoryInfo(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d records in repository", info.RecordCount)

	err = sess.SDRRecords(ctx, func(rec layerexts.SerializableDecodingLayer) error {
		switch r := rec.(type) {
		case *ipmi.FullSensorRecord:
			printSensor(ctx, sess, r.SensorNumber, r.IDString, r.Conversion)
		case *ipmi.CompactSensorRecord:
			log.Printf("sensor %d (%s): compact, no reading conversion available", r.SensorNumber, r.IDString)
		case *ipmi.EventOnlyRecord:
			log.Printf("sensor %d (%s): event-only", r.SensorNumber, r.IDString)
		case *ipmi.FRUDeviceLocatorRecord:
			log.Printf("FRU device %q", r.IDString)
		case *ipmi.ManagementControllerDeviceLocatorRecord:
			log.Printf("management controller %q", r.IDString)
		case *ipmi.EntityAssociationRecord:
			log.Print("entity association record")
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

func printSensor(ctx context.Context, sess *bmc.Session, sensorNumber uint8, name string, conv ipmi.SensorConversion) {
	rsp, err := sess.GetSensorReading(ctx, sensorNumber)
	if err != nil {
		log.Printf("sensor %d (%s): reading unavailable: %v", sensorNumber, name, err)
		return
	}
	if rsp.ReadingUnavailable {
		log.Printf("sensor %d (%s): reading unavailable", sensorNumber, name)
		return
	}
	value, err := conv.Convert(rsp.Reading)
	if err != nil {
		log.Printf("sensor %d (%s): raw 0x%02x (conversion failed: %v)", sensorNumber, name, rsp.Reading, err)
		return
	}
	log.Printf("sensor %d (%s): %g", sensorNumber, name, value)
}
