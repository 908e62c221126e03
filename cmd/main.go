package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/climate-guardian/climate-guardian-api/internal/archive"
	"github.com/climate-guardian/climate-guardian-api/internal/delivery"
	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/notification"
	"github.com/climate-guardian/climate-guardian-api/internal/properties"
	"github.com/climate-guardian/climate-guardian-api/internal/raster"
	"github.com/climate-guardian/climate-guardian-api/internal/series"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
	"github.com/climate-guardian/climate-guardian-api/output"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Climate", "isometric1", true)
	figure2 := figure.NewFigure("Guardian", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

// newExtractor prefers the archive service when configured and falls back
// to the local raster store.
func newExtractor() grid.Extractor {
	if properties.ArchiveBaseURL() != "" {
		fmt.Printf("\033[32mUsing climate archive at %s\033[0m\n", properties.ArchiveBaseURL())
		return archive.NewClient()
	}
	fmt.Println("\033[33mNo archive configured. Using local raster store.\033[0m")
	return raster.NewExtractor("")
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print("\033[34m" + prompt + "\033[0m")
	text, _ := reader.ReadString('\n')
	return strings.TrimSpace(text)
}

func readFloat(reader *bufio.Reader, prompt string) (float64, error) {
	return strconv.ParseFloat(readLine(reader, prompt), 64)
}

func readDate(reader *bufio.Reader, prompt string) (time.Time, error) {
	return time.Parse("2006-01-02", readLine(reader, prompt))
}

func readSpec(reader *bufio.Reader) (trigger.Spec, error) {
	fmt.Println("\033[32m\nAvailable variables:\033[0m")
	for _, variable := range trigger.Variables() {
		unit := variable.Unit()
		if unit != "" {
			unit = " (" + unit + ")"
		}
		fmt.Printf("\033[32m- %s%s\033[0m\n", variable, unit)
	}

	spec := trigger.Spec{
		Variable: trigger.VariableFamily(readLine(reader, "Enter the variable: ")),
		Source:   readLine(reader, "Enter the dataset source (e.g. chirps, era5): "),
	}

	threshold, err := readFloat(reader, "Enter the threshold: ")
	if err != nil {
		return spec, fmt.Errorf("invalid threshold: %v", err)
	}
	spec.Threshold = threshold

	direction := readLine(reader, "Enter the direction (above/below, empty for the variable default): ")
	spec.Direction = trigger.Direction(direction)

	minDays, err := strconv.Atoi(readLine(reader, "Enter the minimum consecutive days: "))
	if err != nil {
		return spec, fmt.Errorf("invalid minimum consecutive days: %v", err)
	}
	spec.MinConsecutiveDays = minDays

	if spec.StartDate, err = readDate(reader, "Enter the start date (YYYY-MM-DD): "); err != nil {
		return spec, fmt.Errorf("invalid start date: %v", err)
	}
	if spec.EndDate, err = readDate(reader, "Enter the end date (YYYY-MM-DD): "); err != nil {
		return spec, fmt.Errorf("invalid end date: %v", err)
	}
	return spec, nil
}

func readGeometry(reader *bufio.Reader) (geometry.Descriptor, error) {
	footprint := readLine(reader, "Enter a footprint geojson name (empty for point/buffer): ")
	if footprint != "" {
		ring, err := delivery.LoadFootprint(footprint)
		if err != nil {
			return nil, err
		}
		statistic := geometry.Statistic(readLine(reader, "Enter the polygon statistic (mean/min/max/sum): "))
		if statistic == "" {
			statistic = geometry.StatisticMean
		}
		return geometry.Polygon{Ring: ring, Statistic: statistic}, nil
	}

	lat, err := readFloat(reader, "Enter the latitude: ")
	if err != nil {
		return nil, fmt.Errorf("invalid latitude: %v", err)
	}
	lon, err := readFloat(reader, "Enter the longitude: ")
	if err != nil {
		return nil, fmt.Errorf("invalid longitude: %v", err)
	}
	radius, err := readFloat(reader, "Enter the buffer radius in km (0 for a point sample): ")
	if err != nil {
		return nil, fmt.Errorf("invalid radius: %v", err)
	}
	if radius > 0 {
		return geometry.Buffer{Lat: lat, Lon: lon, RadiusKm: radius}, nil
	}
	return geometry.Point{Lat: lat, Lon: lon}, nil
}

func printResult(spec trigger.Spec, result *trigger.Result) {
	if result.Triggered {
		fmt.Printf("\n\033[31mTRIGGERED: %d day(s) %s %.2f%s across %d run(s)\033[0m\n",
			result.TotalTriggerDays, spec.Direction, spec.Threshold, spec.Variable.Unit(), len(result.Runs))
	} else {
		fmt.Printf("\n\033[32mNot triggered over %s to %s\033[0m\n",
			spec.StartDate.Format("2006-01-02"), spec.EndDate.Format("2006-01-02"))
	}
	for i, run := range result.Runs {
		fmt.Printf("\033[33mRun %d: %s to %s, %d day(s), peak %.2f\033[0m\n",
			i+1, run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"), run.LengthDays, run.PeakValue)
	}
	fmt.Printf("Series: min=%.2f max=%.2f mean=%.2f missing_days=%d\n",
		result.Summary.Min, result.Summary.Max, result.Summary.Mean, result.Summary.MissingDays)
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Climate Guardian CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	reader := bufio.NewReader(os.Stdin)
	extractor := newExtractor()

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Evaluate a location trigger\033[0m")
		fmt.Println("\033[34m2. Run batch triggers from a CSV file\033[0m")
		fmt.Println("\033[34m3. List variables and raster sources\033[0m")
		fmt.Println("\033[34m4. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		if _, err := fmt.Fscan(reader, &choice); err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			reader.ReadString('\n')
			continue
		}
		reader.ReadString('\n')

		switch choice {
		case 1:
			spec, err := readSpec(reader)
			if err != nil {
				fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
				continue
			}
			descriptor, err := readGeometry(reader)
			if err != nil {
				fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
				continue
			}

			result, err := delivery.EvaluateLocation(context.Background(), spec, descriptor, extractor)
			if err != nil {
				fmt.Printf("\n\033[31mError evaluating trigger: %s\033[0m\n", err.Error())
				continue
			}
			printResult(spec, result)
		case 2:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33m- The input should be a '.csv' file present in data/batch_input folder.\033[0m")
			fmt.Println("\033[33m- Columns: location_id, latitude, longitude, buffer_km, footprint, statistic.\n\033[0m")

			inputFileName := readLine(reader, "Enter input data file name: ")
			spec, err := readSpec(reader)
			if err != nil {
				fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
				continue
			}

			if client, ok := extractor.(*archive.Client); ok {
				dates := series.DateRange(spec.StartDate, spec.EndDate)
				fmt.Printf("Prefetching %d archive grids...\n", len(dates))
				if err := client.Warmup(context.Background(), string(spec.Variable), spec.Source, dates, properties.BatchWorkers()); err != nil {
					fmt.Printf("\n\033[31mError prefetching grids: %s\033[0m\n", err.Error())
					continue
				}
			}

			outputName := fmt.Sprintf("%s_%s_%s_%s", strings.TrimSuffix(inputFileName, ".csv"),
				spec.Variable, spec.StartDate.Format("2006-01-02"), spec.EndDate.Format("2006-01-02"))
			rows, err := delivery.RunBatch(context.Background(), inputFileName, outputName+".csv", spec, extractor)
			if err != nil {
				fmt.Printf("\n\033[31mError running batch: %s\033[0m\n", err.Error())
				continue
			}

			geojsonPath, err := output.CreateResultGeoJSON(rows, outputName)
			if err != nil {
				fmt.Printf("\n\033[31mError creating result geojson: %s\033[0m\n", err.Error())
				continue
			}
			mapPath, err := output.CreateTriggerMap(rows, outputName)
			if err != nil {
				fmt.Printf("\n\033[31mError creating trigger map: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Printf("\n\033[32mSuccessful batch!\n Result map located at: %s\n Result geojson located at: %s\033[0m\n", mapPath, geojsonPath)
		case 3:
			fmt.Println("\033[32m\nAvailable variables:\033[0m")
			for _, variable := range trigger.Variables() {
				fmt.Printf("\033[32m- %s\033[0m\n", variable)
			}

			store := raster.NewExtractor("")
			sources, err := store.ListSources()
			if err != nil {
				fmt.Println("\033[33mNo local raster store found.\033[0m")
				continue
			}
			fmt.Println("\033[32m\nAvailable raster sources:\033[0m")
			for _, source := range sources {
				fmt.Printf("\033[32m- %s\033[0m\n", source)
			}
		case 4:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	err := godotenv.Load("../../.env")
	if err != nil {
		err = godotenv.Load("../.env")
		if err != nil {
			godotenv.Load(".env")
		}
	}

	initCLI()
}
